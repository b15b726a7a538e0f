package transit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotFound reports that the requested entity does not exist on the
// server. Callers can distinguish it from transport failures with
// errors.Is.
var ErrNotFound = errors.New("not found")

// Client is an HTTP client for the transit map API.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, pageSize int, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// get fetches baseURL+path with the given query parameters.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return c.getURL(ctx, u)
}

func (c *Client) getURL(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", u, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("HTTP 404 from %s: %w", u, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, u)
	}

	return io.ReadAll(resp.Body)
}
