package feed

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"
)

// Client fetches market data for a single symbol per call. Implementations keep
// no state between calls and never retry; any error means "no data this time".
type Client interface {
	SpotPrice(ctx context.Context, symbol string) (float64, error)
	HistoricalCloses(ctx context.Context, symbol string, granularity int) ([]float64, error)
	Name() string
}

var (
	// ErrNoData is returned when the feed answered but had nothing usable.
	ErrNoData = errors.New("feed: no data")
	// ErrMalformed is returned when the payload could not be interpreted.
	ErrMalformed = errors.New("feed: malformed payload")
)

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
