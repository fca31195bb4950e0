package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Config struct {
	// Required fields
	BaseURL string
	APIKey  string

	UpstreamTimeout   time.Duration // per-request timeout (default: 10s)
	RequestsPerSecond float64       // client-side rate limit (default: 3)
	RetryBackoff      time.Duration // wait before the single retry (default: 200ms)

	// Custom HTTP client (for testing or special configs)
	HTTPClient *http.Client
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("BaseURL is required")
	}
	if c.APIKey == "" {
		return errors.New("APIKey is required")
	}
	return nil
}

func (c *Config) withDefaults() Config {
	cfg := *c
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 10 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	return cfg
}

// Client talks to a Bing-style web-search API. Outbound calls share a rate
// limiter so a burst of cache misses cannot exhaust the provider quota.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,

				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:     logger.Named("searchclient"),
	}, nil
}

// Wire shape of the provider response (Bing Web Search style).
type providerSearchResponse struct {
	WebPages *struct {
		Value []struct {
			Name    string `json:"name"`
			Snippet string `json:"snippet"`
			URL     string `json:"url"`
		} `json:"value"`
	} `json:"webPages"`
}

// Search runs one web search. Transient failures (network errors, 429, 5xx)
// are retried once after a short backoff, then surfaced.
func (c *Client) Search(parentCtx context.Context, query string, count int) ([]Result, error) {
	start := time.Now()

	if err := c.limiter.Wait(parentCtx); err != nil {
		return nil, fmt.Errorf("searchclient: rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(parentCtx, c.cfg.UpstreamTimeout)
	defer cancel()

	body, err := c.doWithSingleRetry(ctx, query, count)
	if err != nil {
		c.logger.Error("search request failed",
			zap.String("query", query),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}

	var pResp providerSearchResponse
	if err := json.Unmarshal(body, &pResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	// A provider response without webPages means zero hits, not a schema
	// violation; empty result sets are legitimate.
	if pResp.WebPages == nil {
		c.logger.Info("search returned no web pages", zap.String("query", query))
		return nil, nil
	}

	results := make([]Result, 0, len(pResp.WebPages.Value))
	for i, page := range pResp.WebPages.Value {
		results = append(results, Result{
			ID:      i + 1,
			Title:   page.Name,
			Snippet: page.Snippet,
			URL:     page.URL,
		})
	}

	c.logger.Info("search request completed",
		zap.String("query", query),
		zap.Int("results", len(results)),
		zap.Duration("duration", time.Since(start)),
	)

	return results, nil
}

func (c *Client) doWithSingleRetry(ctx context.Context, query string, count int) ([]byte, error) {
	body, err := c.doOnce(ctx, query, count)
	if err == nil {
		return body, nil
	}
	if !isTransient(err) {
		return nil, err
	}

	c.logger.Warn("transient search error, retrying once", zap.Error(err))
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.cfg.RetryBackoff):
	}

	return c.doOnce(ctx, query, count)
}

func (c *Client) doOnce(ctx context.Context, query string, count int) ([]byte, error) {
	u := c.cfg.BaseURL + "/v7.0/search?q=" + url.QueryEscape(query) + "&count=" + strconv.Itoa(count)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("searchclient: build request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searchclient: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("searchclient: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode, body: truncate(string(body), 200)}
	}

	return body, nil
}

// Ping probes provider reachability. Any HTTP response counts as reachable,
// including auth failures; only transport-level errors report down.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("searchclient: build ping request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("searchclient: ping: %w", err)
	}
	resp.Body.Close()
	return nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("searchclient: upstream %d: %s", e.code, e.body)
}

// isTransient reports whether a failed attempt is worth the single retry.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var sErr *statusError
	if errors.As(err, &sErr) {
		return sErr.code == http.StatusTooManyRequests ||
			sErr.code == http.StatusRequestTimeout ||
			(sErr.code >= 500 && sErr.code <= 599)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial" || opErr.Op == "read" || opErr.Op == "write"
	}

	return false
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
