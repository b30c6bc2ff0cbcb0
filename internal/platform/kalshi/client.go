// Package kalshi provides the REST client for the Kalshi exchange API.
// Catalog reads require RSA-signed authentication.
package kalshi

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mkozera/arbfinder/internal/domain"
)

// Client is the REST client for the Kalshi exchange API.
type Client struct {
	baseURL    string
	apiKeyID   string
	privateKey *rsa.PrivateKey
	httpClient *http.Client
}

// NewClient creates a new Kalshi REST client.
//
// baseURL is the API root, e.g. "https://api.elections.kalshi.com/trade-api/v2".
// apiKeyID is the Kalshi API key identifier.
func NewClient(baseURL, apiKeyID string) *Client {
	return &Client{
		baseURL:  baseURL,
		apiKeyID: apiKeyID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetRSAPrivateKey loads an RSA private key from PEM-encoded bytes and
// configures the client for RSA-signed authentication.
func (c *Client) SetRSAPrivateKey(pemBytes []byte) error {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return fmt.Errorf("kalshi: no PEM block found in private key")
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		// Try PKCS1 as fallback.
		pkcs1Key, pkcs1Err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if pkcs1Err != nil {
			return fmt.Errorf("kalshi: parse private key: %w (pkcs1: %v)", err, pkcs1Err)
		}
		c.privateKey = pkcs1Key
		return nil
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return fmt.Errorf("kalshi: expected RSA private key, got %T", key)
	}
	c.privateKey = rsaKey
	return nil
}

// GetMarkets returns one page of open markets plus the cursor for the next.
func (c *Client) GetMarkets(ctx context.Context, limit int, cursor string) ([]APIMarket, string, error) {
	params := url.Values{}
	params.Set("status", "open")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	path := "/markets?" + params.Encode()

	body, err := c.doSignedRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, "", fmt.Errorf("kalshi: get markets: %w", err)
	}

	var resp struct {
		Markets []APIMarket `json:"markets"`
		Cursor  string      `json:"cursor"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", fmt.Errorf("kalshi: decode markets: %w", err)
	}

	return resp.Markets, resp.Cursor, nil
}

// ListAllMarkets pages through the open-market catalog via cursors until the
// cursor is exhausted or maxPages is reached.
func (c *Client) ListAllMarkets(ctx context.Context, pageSize, maxPages int) ([]APIMarket, error) {
	if pageSize <= 0 {
		pageSize = 100
	}

	var all []APIMarket
	cursor := ""
	for page := 0; maxPages <= 0 || page < maxPages; page++ {
		markets, next, err := c.GetMarkets(ctx, pageSize, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, markets...)
		if next == "" || len(markets) == 0 {
			break
		}
		cursor = next
	}
	return all, nil
}

// GetMarket returns a single market by its ticker.
func (c *Client) GetMarket(ctx context.Context, ticker string) (APIMarket, error) {
	path := fmt.Sprintf("/markets/%s", url.PathEscape(ticker))

	body, err := c.doSignedRequest(ctx, http.MethodGet, path)
	if err != nil {
		return APIMarket{}, fmt.Errorf("kalshi: get market %s: %w", ticker, err)
	}

	var resp struct {
		Market APIMarket `json:"market"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return APIMarket{}, fmt.Errorf("kalshi: decode market: %w", err)
	}

	return resp.Market, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doSignedRequest builds, signs (RSA), sends, and reads an HTTP request
// against the Kalshi API.
func (c *Client) doSignedRequest(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if err := c.signRequest(req, method, path); err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := c.checkStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

// signRequest adds RSA authentication headers to the HTTP request.
// Kalshi uses RSA-PSS-SHA256 signatures over the timestamp + method + path
// message string.
func (c *Client) signRequest(req *http.Request, method, path string) error {
	if c.privateKey == nil {
		return fmt.Errorf("kalshi: RSA private key not configured")
	}

	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)

	// The message to sign is: timestamp + method + path
	message := ts + method + path

	hash := sha256.Sum256([]byte(message))
	signature, err := rsa.SignPSS(rand.Reader, c.privateKey, crypto.SHA256, hash[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
	})
	if err != nil {
		return fmt.Errorf("RSA sign: %w", err)
	}

	encodedSig := base64.StdEncoding.EncodeToString(signature)

	req.Header.Set("KALSHI-ACCESS-KEY", c.apiKeyID)
	req.Header.Set("KALSHI-ACCESS-SIGNATURE", encodedSig)
	req.Header.Set("KALSHI-ACCESS-TIMESTAMP", ts)

	return nil
}

// checkStatus maps non-2xx HTTP status codes to appropriate errors.
func (c *Client) checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var apiErr APIErrorResponse
	_ = json.Unmarshal(body, &apiErr)

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("kalshi: %w: %s (%s)", domain.ErrNotFound, apiErr.Message, apiErr.Code)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("kalshi: %w: %s (%s)", domain.ErrUnauthorized, apiErr.Message, apiErr.Code)
	case http.StatusTooManyRequests:
		return fmt.Errorf("kalshi: %w: %s (%s)", domain.ErrRateLimited, apiErr.Message, apiErr.Code)
	default:
		return fmt.Errorf("kalshi: HTTP %d: %s (%s)", statusCode, apiErr.Message, apiErr.Code)
	}
}
