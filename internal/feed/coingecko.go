package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"CryptoSim/internal/model"
)

const DefaultCoinGeckoBaseURL = "https://api.coingecko.com"

// Coin is one entry of the CoinGecko markets listing.
type Coin struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             float64  `json:"current_price"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
}

// CoinGeckoClient supplies display metadata (names and logos) for tracked symbols.
type CoinGeckoClient struct {
	BaseURL string
	Client  *http.Client
}

func NewCoinGeckoClient(baseURL, proxyURL string, timeout time.Duration) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoBaseURL
	}
	return &CoinGeckoClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

// TopCoins returns the 50 largest coins by market cap.
func (c *CoinGeckoClient) TopCoins(ctx context.Context) ([]Coin, error) {
	endpoint := c.BaseURL + "/api/v3/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=50&page=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch top coins: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("coingecko status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var coins []Coin
	if err := json.NewDecoder(resp.Body).Decode(&coins); err != nil {
		return nil, fmt.Errorf("decode top coins: %w", err)
	}
	return coins, nil
}

// Enrich fills missing names and logos of tracked symbols from a coin listing.
// Entries that already carry metadata are left as configured.
func Enrich(symbols []model.TrackedSymbol, coins []Coin) []model.TrackedSymbol {
	bySymbol := make(map[string]Coin, len(coins))
	for _, c := range coins {
		sym := strings.ToUpper(c.Symbol)
		if _, seen := bySymbol[sym]; !seen {
			bySymbol[sym] = c
		}
	}
	out := make([]model.TrackedSymbol, len(symbols))
	for i, s := range symbols {
		out[i] = s
		c, ok := bySymbol[strings.ToUpper(s.Symbol)]
		if !ok {
			continue
		}
		if out[i].Name == "" || out[i].Name == s.Symbol {
			out[i].Name = c.Name
		}
		if out[i].LogoURL == "" {
			out[i].LogoURL = c.Image
		}
	}
	return out
}
