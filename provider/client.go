package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rustyeddy/atb/market"
)

// DefaultTimeout bounds a single fetch when the caller sets none.
const DefaultTimeout = 3 * time.Second

// Client fetches historical series from a market-data backend serving
// GET {base}/api/market-data/{symbol}.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ market.Provider = (*Client)(nil)

// NewClient creates a client for baseURL. A non-positive timeout uses
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// apiPoint is one element of the response array
type apiPoint struct {
	Time   time.Time `json:"time"`
	Price  float64   `json:"price"`
	Volume float64   `json:"volume"`
}

// FetchSeries returns the chronological points the backend holds for
// symbol. Any non-200 status is an error.
func (c *Client) FetchSeries(ctx context.Context, symbol string) ([]market.Point, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	apiURL := fmt.Sprintf("%s/api/market-data/%s", c.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw []apiPoint
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty series for %s", symbol)
	}

	pts := make([]market.Point, len(raw))
	for i, p := range raw {
		pts[i] = market.Point{Time: p.Time, Price: p.Price, Volume: p.Volume}
	}
	return pts, nil
}
