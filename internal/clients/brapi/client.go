// Package brapi provides a client for the brapi.dev market data API.
package brapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ativotrack/internal/clients/clientdata"
)

// Client for brapi.dev
type Client struct {
	baseURL   string
	token     string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new brapi.dev client.
// token may be empty (free tier). cacheRepo is optional - if nil,
// caching is disabled.
func NewClient(baseURL, token string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://brapi.dev/api"
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       log.With().Str("client", "brapi").Logger(),
		cacheRepo: cacheRepo,
	}
}

// QuoteOptions control what /quote returns beyond the latest price.
type QuoteOptions struct {
	Range     string // 1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, max
	Interval  string // 1d, 1wk, 1mo
	Dividends bool
}

// GetQuote fetches quotes for one or more tickers.
// Responses are cached per (tickers, options) with a short TTL; when the
// provider is unreachable a stale cached response is returned if one
// exists.
func (c *Client) GetQuote(tickers []string, opts QuoteOptions) (*QuoteResponse, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers given")
	}

	params := url.Values{}
	if opts.Range != "" {
		params.Set("range", opts.Range)
		if opts.Interval == "" {
			opts.Interval = "1d"
		}
		params.Set("interval", opts.Interval)
	}
	if opts.Dividends {
		params.Set("dividends", "true")
	}

	joined := strings.Join(tickers, ",")
	cacheKey := joined + "?" + params.Encode()
	ttl := clientdata.TTLQuote
	if opts.Range != "" {
		ttl = clientdata.TTLHistorical
	}
	if opts.Dividends {
		ttl = clientdata.TTLDividends
	}

	// Fresh cache hit
	if c.cacheRepo != nil {
		var cached QuoteResponse
		if hit, err := c.cacheRepo.GetIfFresh("brapi", cacheKey, &cached); err == nil && hit {
			c.log.Debug().Str("tickers", joined).Msg("Cache hit")
			return &cached, nil
		}
	}

	if c.token != "" {
		params.Set("token", c.token)
	}

	endpoint := fmt.Sprintf("%s/quote/%s", c.baseURL, url.PathEscape(joined))
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	resp, err := c.client.Get(endpoint)
	if err != nil {
		if stale := c.staleResponse(cacheKey); stale != nil {
			c.log.Warn().Err(err).Str("tickers", joined).Msg("Provider unreachable, using stale cached quotes")
			return stale, nil
		}
		return nil, fmt.Errorf("brapi request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale := c.staleResponse(cacheKey); stale != nil {
			c.log.Warn().Int("status", resp.StatusCode).Str("tickers", joined).Msg("Provider error, using stale cached quotes")
			return stale, nil
		}
		return nil, fmt.Errorf("brapi returned status %d", resp.StatusCode)
	}

	var result QuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse brapi response: %w", err)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("brapi", cacheKey, result, ttl); err != nil {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache quote response")
		}
	}

	c.log.Debug().Str("tickers", joined).Int("results", len(result.Results)).Msg("Fetched quotes")
	return &result, nil
}

// GetHistorical fetches daily OHLCV history for a ticker.
func (c *Client) GetHistorical(ticker, rng, interval string) (*QuoteResponse, error) {
	if rng == "" {
		rng = "1y"
	}
	return c.GetQuote([]string{ticker}, QuoteOptions{Range: rng, Interval: interval})
}

// GetDividends fetches the dividend history for a ticker.
func (c *Client) GetDividends(ticker string) (*QuoteResponse, error) {
	return c.GetQuote([]string{ticker}, QuoteOptions{Dividends: true})
}

func (c *Client) staleResponse(cacheKey string) *QuoteResponse {
	if c.cacheRepo == nil {
		return nil
	}

	var cached QuoteResponse
	if hit, err := c.cacheRepo.GetStale("brapi", cacheKey, &cached); err == nil && hit {
		return &cached
	}
	return nil
}
