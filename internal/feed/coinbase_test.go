package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *CoinbaseClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCoinbaseClient(srv.URL, srv.URL, "", 5*time.Second)
}

func TestSpotPrice_Envelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/prices/BTC-USD/spot", r.URL.Path)
		w.Write([]byte(`{"data":{"amount":"67012.345","base":"BTC","currency":"USD"}}`))
	})

	price, err := c.SpotPrice(context.Background(), "btc")
	require.NoError(t, err)
	assert.Equal(t, 67012.345, price)
}

func TestSpotPrice_FlatPrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"price":"3120.5"}`))
	})

	price, err := c.SpotPrice(context.Background(), "ETH")
	require.NoError(t, err)
	assert.Equal(t, 3120.5, price)
}

func TestSpotPrice_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, `oops`, nil},
		{"not json", http.StatusOK, `<html>`, ErrMalformed},
		{"empty amount", http.StatusOK, `{"data":{}}`, ErrNoData},
		{"not a number", http.StatusOK, `{"data":{"amount":"abc"}}`, ErrMalformed},
		{"zero price", http.StatusOK, `{"data":{"amount":"0"}}`, ErrMalformed},
		{"negative price", http.StatusOK, `{"price":"-1"}`, ErrMalformed},
		{"overflowing price", http.StatusOK, `{"data":{"amount":"1e400"}}`, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			got, err := c.SpotPrice(context.Background(), "SOL")
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Zero(t, got)
		})
	}
}

func TestHistoricalCloses_SortsAscending(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/BTC-USD/candles", r.URL.Path)
		assert.Equal(t, "3600", r.URL.Query().Get("granularity"))
		w.Write([]byte(`[
			[1700007200, 9, 12, 10, 11, 5.5],
			[1700000000, 7, 10, 8, 9, 1.0],
			[1700003600, 8, 11, 9, 10, 2.0]
		]`))
	})

	got, err := c.HistoricalCloses(context.Background(), "BTC", 3600)
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 10, 11}, got)
}

func TestHistoricalCloses_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", `[]`},
		{"short row", `[[1700000000, 1, 2, 3]]`},
		{"object", `{"message":"NotFound"}`},
		{"overflowing close", `[[1700000000, 1, 1, 1, 1e400, 1]]`},
		{"overflowing volume", `[[1700000000, 1, 1, 1, 1, -1e400]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			got, err := c.HistoricalCloses(context.Background(), "BTC", 300)
			assert.Error(t, err)
			assert.Nil(t, got)
			if strings.HasPrefix(tt.name, "overflowing") {
				assert.ErrorIs(t, err, ErrMalformed)
			}
		})
	}
}

func TestSpotPrice_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"price":"1"}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.SpotPrice(ctx, "BTC")
	assert.Error(t, err)
}
