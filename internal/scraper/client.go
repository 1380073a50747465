package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"doisporum/offerscraper/helpers"
	"doisporum/offerscraper/logger"
	apperr "doisporum/offerscraper/pkg/errors"
	"doisporum/offerscraper/services/cache"
)

const maxFetchAttempts = 3

// ClientConfig configures the shared HTTP client
type ClientConfig struct {
	Timeout   time.Duration
	RateLimit time.Duration // minimum spacing between requests, 0 disables
	UserAgent string
	BlockTime time.Duration // how long a host stays blocked after a 429
}

// HTTPClient is the single shared request issuer for the whole run.
// It throttles the aggregate request rate through one token bucket, retries
// transient failures with linear backoff, and remembers rate-limited hosts
// in the cache service so they are not contacted again.
type HTTPClient struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	blockTime time.Duration
	cacheSvc  cache.CacheService
	log       *logger.Logger
}

// NewHTTPClient creates the shared client. cacheSvc may be nil, in which
// case 429 blocking only lasts for the current process.
func NewHTTPClient(cfg ClientConfig, cacheSvc cache.CacheService) *HTTPClient {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.RateLimit), 1)
	}

	return &HTTPClient{
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   limiter,
		userAgent: cfg.UserAgent,
		blockTime: cfg.BlockTime,
		cacheSvc:  cacheSvc,
		log:       logger.ForComponent("http_client"),
	}
}

// GetText fetches a page and returns the body as UTF-8 text.
// Network faults and 5xx answers are retried up to maxFetchAttempts times;
// a 429 blocks the host and fails immediately.
func (c *HTTPClient) GetText(ctx context.Context, pageURL string) (string, error) {
	host, err := hostOf(pageURL)
	if err != nil {
		return "", apperr.NewValidation(pageURL, "not an absolute URL")
	}

	if c.isBlocked(host) {
		return "", apperr.NewRateLimit(host, c.blockTime)
	}

	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", apperr.NewNetwork(host, "request cancelled", err)
		}

		body, err := c.fetchOnce(ctx, pageURL, host)
		if err == nil {
			return body, nil
		}
		if !apperr.IsType(err, apperr.ErrorTypeNetwork) {
			return "", err
		}
		lastErr = err

		c.log.Warn().
			Str("url", pageURL).
			Int("attempt", attempt).
			Err(err).
			Msg("Fetch attempt failed")

		if attempt < maxFetchAttempts {
			// Linear backoff between attempts
			select {
			case <-ctx.Done():
				return "", apperr.NewNetwork(host, "request cancelled", ctx.Err())
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	return "", lastErr
}

// Close releases the underlying connection pool
func (c *HTTPClient) Close() {
	c.client.CloseIdleConnections()
}

func (c *HTTPClient) fetchOnce(ctx context.Context, pageURL, host string) (string, error) {
	req, err := helpers.NewPageRequest(ctx, pageURL, c.userAgent)
	if err != nil {
		return "", apperr.NewValidation(pageURL, err.Error())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperr.NewNetwork(host, "failed to fetch URL", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		c.block(host)
		return "", apperr.NewRateLimit(host, c.blockTime)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return "", apperr.NewNetwork(host, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	body, err := helpers.ReadUTF8Body(resp)
	if err != nil {
		return "", apperr.NewNetwork(host, "failed to read response body", err)
	}

	return body, nil
}

func (c *HTTPClient) isBlocked(host string) bool {
	if c.cacheSvc == nil {
		return false
	}
	_, err := c.cacheSvc.Get(cache.BlockKey(host))
	return err == nil
}

func (c *HTTPClient) block(host string) {
	if c.cacheSvc == nil || c.blockTime <= 0 {
		return
	}
	value := []byte(fmt.Sprintf("%d", int(c.blockTime.Seconds())))
	if err := c.cacheSvc.Set(cache.BlockKey(host), value, c.blockTime); err != nil {
		c.log.Warn().Str("host", host).Err(err).Msg("Failed to record host block")
	}
}

func hostOf(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", pageURL)
	}
	return u.Host, nil
}
