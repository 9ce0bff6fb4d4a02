package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoSim/internal/model"
)

func TestTopCoins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/coins/markets", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"https://img/btc.png","current_price":67000,"price_change_percentage_24h":null}]`))
	}))
	defer srv.Close()

	coins, err := NewCoinGeckoClient(srv.URL, "", time.Second).TopCoins(context.Background())
	require.NoError(t, err)
	require.Len(t, coins, 1)
	assert.Equal(t, "Bitcoin", coins[0].Name)
	assert.Nil(t, coins[0].PriceChangePercentage24h)
}

func TestEnrich(t *testing.T) {
	symbols := []model.TrackedSymbol{
		{Symbol: "BTC", Name: "BTC"},
		{Symbol: "ETH", Name: "Ether", LogoURL: "custom.png"},
		{Symbol: "XYZ"},
	}
	coins := []Coin{
		{Symbol: "btc", Name: "Bitcoin", Image: "btc.png"},
		{Symbol: "eth", Name: "Ethereum", Image: "eth.png"},
	}

	got := Enrich(symbols, coins)

	assert.Equal(t, "Bitcoin", got[0].Name)
	assert.Equal(t, "btc.png", got[0].LogoURL)
	assert.Equal(t, "Ether", got[1].Name)
	assert.Equal(t, "custom.png", got[1].LogoURL)
	assert.Equal(t, model.TrackedSymbol{Symbol: "XYZ"}, got[2])
	assert.Equal(t, "BTC", symbols[0].Name, "input must not be modified")
}
