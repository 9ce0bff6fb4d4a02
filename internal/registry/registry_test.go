package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoSim/internal/model"
)

func rec(symbol string, price float64) model.AssetRecord {
	return model.AssetRecord{
		Symbol: symbol,
		Name:   symbol,
		Price:  price,
		Charts: map[model.Horizon][]float64{
			model.HorizonShort:  {price},
			model.HorizonMedium: {price},
			model.HorizonLong:   {price},
		},
	}
}

func TestPublish_LinksPreviousPrice(t *testing.T) {
	r := New()
	now := time.Now()

	require.True(t, r.Publish(1, []model.AssetRecord{rec("BTC", 100)}, now))
	first, ok := r.Get("BTC")
	require.True(t, ok)
	assert.Nil(t, first.PreviousPrice)
	assert.Equal(t, model.DirectionNone, first.Direction())

	require.True(t, r.Publish(2, []model.AssetRecord{rec("BTC", 110)}, now))
	second, _ := r.Get("BTC")
	require.NotNil(t, second.PreviousPrice)
	assert.Equal(t, 100.0, *second.PreviousPrice)
	assert.Equal(t, model.DirectionUp, second.Direction())

	require.True(t, r.Publish(3, []model.AssetRecord{rec("BTC", 90)}, now))
	third, _ := r.Get("BTC")
	assert.Equal(t, 110.0, *third.PreviousPrice)
	assert.Equal(t, model.DirectionDown, third.Direction())
}

func TestPublish_DiscardsStaleCycle(t *testing.T) {
	r := New()
	now := time.Now()

	require.True(t, r.Publish(5, []model.AssetRecord{rec("ETH", 3000)}, now))
	assert.False(t, r.Publish(4, []model.AssetRecord{rec("ETH", 1)}, now.Add(time.Second)))
	assert.False(t, r.Publish(5, []model.AssetRecord{rec("ETH", 2)}, now.Add(time.Second)))

	price, ok := r.Price("ETH")
	assert.True(t, ok)
	assert.Equal(t, 3000.0, price)
	assert.Equal(t, uint64(5), r.CycleID())
	updated, _ := r.LastUpdated()
	assert.True(t, updated.Equal(now))
}

func TestPublish_NilSeriesKeepsPrevious(t *testing.T) {
	r := New()
	r.Publish(1, []model.AssetRecord{rec("SOL", 150)}, time.Now())

	partial := rec("SOL", 155)
	partial.Charts[model.HorizonMedium] = nil
	delete(partial.Charts, model.HorizonLong)
	r.Publish(2, []model.AssetRecord{partial}, time.Now())

	got, _ := r.Get("SOL")
	assert.Equal(t, []float64{155}, got.Chart(model.HorizonShort))
	assert.Equal(t, []float64{150}, got.Chart(model.HorizonMedium))
	assert.Equal(t, []float64{150}, got.Chart(model.HorizonLong))
}

func TestPublish_UntouchedSymbolsSurvive(t *testing.T) {
	r := New()
	r.Publish(1, []model.AssetRecord{rec("BTC", 1), rec("ETH", 2)}, time.Now())
	r.Publish(2, []model.AssetRecord{rec("ETH", 3)}, time.Now())

	assert.Equal(t, map[string]float64{"BTC": 1, "ETH": 3}, r.Prices())
	assets := r.Assets()
	require.Len(t, assets, 2)
	assert.Equal(t, "BTC", assets[0].Symbol)
	assert.Equal(t, "ETH", assets[1].Symbol)
	assert.Equal(t, []string{"BTC", "ETH"}, r.Symbols())
}

func TestRegistry_Empty(t *testing.T) {
	r := New()
	_, ok := r.Price("BTC")
	assert.False(t, ok)
	_, ok = r.LastUpdated()
	assert.False(t, ok)
	assert.Empty(t, r.Assets())
}

func TestRegistry_ConcurrentReadersSeeWholeBatches(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	done := make(chan struct{})

	// every batch sets all symbols to the cycle id, so a reader must never see a mix
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			prices := r.Prices()
			var first float64
			i := 0
			for _, p := range prices {
				if i == 0 {
					first = p
				}
				if p != first {
					t.Errorf("torn read: %v", prices)
					return
				}
				i++
			}
		}
	}()

	for id := uint64(1); id <= 200; id++ {
		p := float64(id)
		r.Publish(id, []model.AssetRecord{rec("A", p), rec("B", p), rec("C", p)}, time.Now())
	}
	close(done)
	wg.Wait()
}
