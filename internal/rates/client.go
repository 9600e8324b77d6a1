package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Snapshot is one USD-based rate table fetch.
type Snapshot struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

// Source provides the latest rate snapshot (live API, cached, Redis-backed).
type Source interface {
	Latest(ctx context.Context) (Snapshot, error)
}

// Client fetches the USD-based conversion table from ExchangeRate-API.
type Client struct {
	url   string
	httpc *http.Client
	clock func() time.Time
}

// NewClient takes the full latest-rates URL, API key included, e.g.
// https://v6.exchangerate-api.com/v6/<key>/latest/USD
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url:   url,
		httpc: &http.Client{Timeout: timeout},
		clock: time.Now,
	}
}

func (c *Client) Latest(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("build rates request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch currency rates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("fetch currency rates: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		BaseCode        string             `json:"base_code"`
		ConversionRates map[string]float64 `json:"conversion_rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Snapshot{}, fmt.Errorf("decode currency rates: %w", err)
	}
	if len(payload.ConversionRates) == 0 {
		return Snapshot{}, fmt.Errorf("currency rate table is empty")
	}

	base := payload.BaseCode
	if base == "" {
		base = "USD"
	}
	return Snapshot{
		Base:      base,
		Rates:     payload.ConversionRates,
		FetchedAt: c.clock(),
	}, nil
}
