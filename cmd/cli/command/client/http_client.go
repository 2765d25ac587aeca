package client

// http_client.go talks to a running AniLog API server.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// AnimeCard mirrors the card the ranking endpoint returns.
type AnimeCard struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Tier        string  `json:"tier"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type apiError struct {
	Error string `json:"error"`
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Health calls /healthz. A non-200 answer is returned as an error.
func (c *HTTPClient) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.get(ctx, "/healthz", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TopRated lists the best rated anime.
func (c *HTTPClient) TopRated(ctx context.Context, limit int) ([]AnimeCard, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var out []AnimeCard
	if err := c.get(ctx, "/api/rankings/top-rated?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() // Ensure the response body is closed

	if resp.StatusCode != http.StatusOK {
		var e apiError
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, e.Error)
		}
		return fmt.Errorf("request failed with status: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
