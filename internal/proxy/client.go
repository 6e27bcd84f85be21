package proxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/MrSnakeDoc/newtab/internal/utils"
)

// FetchDataPath is the route of the proxy endpoint.
const FetchDataPath = "/api/fetchData"

// Client reads documents through a remote /api/fetchData endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ Source = (*Client)(nil)

// NewClient creates a client for the newtab instance at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchBody calls GET /api/fetchData?url=<rawURL> and unwraps the envelope.
func (c *Client) FetchBody(ctx context.Context, rawURL string) (string, error) {
	endpoint := c.baseURL + FetchDataPath + "?url=" + url.QueryEscape(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create proxy request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call proxy: %w", err)
	}
	defer utils.DrainAndClose(resp.Body, 4<<10)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: proxy answered %d", ErrUpstreamStatus, resp.StatusCode)
	}

	var env Envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&env); err != nil {
		return "", fmt.Errorf("failed to decode proxy envelope: %w", err)
	}
	return env.Body, nil
}
