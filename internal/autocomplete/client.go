package autocomplete

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexivanou/nearport/internal/model"
)

// Client queries a remote autocomplete endpoint that answers with the same
// JSON shape as /api/v1/places/suggest.
type Client struct {
	baseURL    string
	limit      int
	httpClient *http.Client
}

// NewClient creates a remote autocomplete client.
func NewClient(baseURL string, limit int, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   limit,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) SearchPlaces(ctx context.Context, query string) ([]model.CandidateAirport, error) {
	params := url.Values{"q": {query}}
	if c.limit > 0 {
		params.Set("limit", strconv.Itoa(c.limit))
	}
	u := c.baseURL + "/api/v1/places/suggest?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("autocomplete request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("autocomplete error: status %d: %s", resp.StatusCode, body)
	}

	var out model.SuggestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Results, nil
}
