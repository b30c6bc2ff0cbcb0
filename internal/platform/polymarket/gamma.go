// Package polymarket provides the REST client for the Polymarket Gamma API,
// which serves market discovery and metadata.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mkozera/arbfinder/internal/domain"
)

// GammaClient is the REST client for the Polymarket Gamma API.
type GammaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGammaClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string) *GammaClient {
	return &GammaClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetMarkets returns a single page of active markets.
func (g *GammaClient) GetMarkets(ctx context.Context, limit, offset int) ([]APIMarket, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("active", "true")
	params.Set("closed", "false")

	path := "/markets?" + params.Encode()

	body, err := g.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: get markets: %w", err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}

	return apiMarkets, nil
}

// ListAllMarkets paginates through the catalog until a short page, an empty
// page, or maxPages is reached.
func (g *GammaClient) ListAllMarkets(ctx context.Context, pageSize, maxPages int) ([]APIMarket, error) {
	if pageSize <= 0 {
		pageSize = 100
	}

	var all []APIMarket
	for page := 0; maxPages <= 0 || page < maxPages; page++ {
		markets, err := g.GetMarkets(ctx, pageSize, page*pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, markets...)
		if len(markets) < pageSize {
			break
		}
	}
	return all, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet sends an unauthenticated GET request to the Gamma API.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx HTTP status codes to appropriate errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	msg := string(body)
	if len(msg) > 200 {
		msg = msg[:200]
	}

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, msg)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, msg)
	}
}
