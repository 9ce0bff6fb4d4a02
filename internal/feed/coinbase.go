package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"CryptoSim/internal/model"
)

const (
	DefaultSpotBaseURL     = "https://api.coinbase.com"
	DefaultExchangeBaseURL = "https://api.exchange.coinbase.com"
)

// CoinbaseClient implements Client against the public Coinbase spot and exchange APIs.
type CoinbaseClient struct {
	SpotBaseURL     string
	ExchangeBaseURL string
	Quote           string // quote currency, "USD"
	Client          *http.Client
}

// NewCoinbaseClient creates a client with optional proxy support.
func NewCoinbaseClient(spotBaseURL, exchangeBaseURL, proxyURL string, timeout time.Duration) *CoinbaseClient {
	if spotBaseURL == "" {
		spotBaseURL = DefaultSpotBaseURL
	}
	if exchangeBaseURL == "" {
		exchangeBaseURL = DefaultExchangeBaseURL
	}
	return &CoinbaseClient{
		SpotBaseURL:     strings.TrimRight(spotBaseURL, "/"),
		ExchangeBaseURL: strings.TrimRight(exchangeBaseURL, "/"),
		Quote:           "USD",
		Client:          newHTTPClient(proxyURL, timeout),
	}
}

func (c *CoinbaseClient) Name() string { return "coinbase" }

func (c *CoinbaseClient) product(symbol string) string {
	return url.PathEscape(strings.ToUpper(symbol) + "-" + c.Quote)
}

// spotResponse accepts both the v2 envelope and a flat {"price": "..."} body.
type spotResponse struct {
	Data *struct {
		Amount string `json:"amount"`
	} `json:"data"`
	Price string `json:"price"`
}

func (c *CoinbaseClient) SpotPrice(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/v2/prices/%s/spot", c.SpotBaseURL, c.product(symbol))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return 0, fmt.Errorf("fetch spot price %s: %w", symbol, err)
	}

	var resp spotResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decode spot price %s: %w: %v", symbol, ErrMalformed, err)
	}
	raw := resp.Price
	if resp.Data != nil && resp.Data.Amount != "" {
		raw = resp.Data.Amount
	}
	if raw == "" {
		return 0, fmt.Errorf("spot price %s: %w", symbol, ErrNoData)
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("parse spot price %s %q: %w", symbol, raw, ErrMalformed)
	}
	f, ok := finite(price)
	if !ok || !price.IsPositive() {
		return 0, fmt.Errorf("spot price %s is %s: %w", symbol, price, ErrMalformed)
	}
	return f, nil
}

// finite converts d to float64, reporting false when it does not fit.
func finite(d decimal.Decimal) (float64, bool) {
	f := d.InexactFloat64()
	return f, !math.IsInf(f, 0) && !math.IsNaN(f)
}

func (c *CoinbaseClient) HistoricalCloses(ctx context.Context, symbol string, granularity int) ([]float64, error) {
	endpoint := fmt.Sprintf("%s/products/%s/candles?granularity=%d", c.ExchangeBaseURL, c.product(symbol), granularity)
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch candles %s/%d: %w", symbol, granularity, err)
	}
	bars, err := parseCandles(body)
	if err != nil {
		return nil, fmt.Errorf("candles %s/%d: %w", symbol, granularity, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("candles %s/%d: %w", symbol, granularity, ErrNoData)
	}
	return closes(bars), nil
}

// parseCandles decodes rows of [time, low, high, open, close, volume] and sorts them by time.
func parseCandles(body []byte) ([]model.OHLCV, error) {
	var rows [][]decimal.Decimal
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	bars := make([]model.OHLCV, 0, len(rows))
	for i, row := range rows {
		if len(row) < 5 {
			return nil, fmt.Errorf("%w: row %d has %d fields", ErrMalformed, i, len(row))
		}
		cells := make([]float64, 6)
		for j, d := range row[:min(len(row), 6)] {
			f, ok := finite(d)
			if !ok {
				return nil, fmt.Errorf("%w: row %d field %d out of range", ErrMalformed, i, j)
			}
			cells[j] = f
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(row[0].IntPart(), 0),
			Low:    cells[1],
			High:   cells[2],
			Open:   cells[3],
			Close:  cells[4],
			Volume: cells[5],
		})
	}
	// Coinbase returns newest first
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func closes(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func (c *CoinbaseClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "CryptoSim/1.0")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, truncate(body, 256))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
