package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// FetcherConfig tunes outbound feed requests.
type FetcherConfig struct {
	Timeout       time.Duration
	Retries       int
	RatePerSecond float64
	UserAgent     string
	// MaxBodyBytes caps a feed document; larger responses fail the fetch.
	MaxBodyBytes int
}

const defaultMaxBodyBytes = 10 << 20

// Fetcher downloads feed documents. All sources share one rate limiter so a
// sync-all does not hammer upstream servers.
type Fetcher struct {
	client  *resty.Client
	limiter *rate.Limiter
	maxBody int
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "khabar-rss/1.0"
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(2*time.Second).
		SetRetryMaxWaitTime(30*time.Second).
		SetResponseBodyLimit(cfg.MaxBodyBytes).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, resty.ErrResponseBodyTooLarge)
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Fetcher{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		maxBody: cfg.MaxBodyBytes,
	}
}

// Fetch retrieves the raw feed document at url. Retries stop when ctx ends,
// so callers bound the total time through the context deadline.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := f.client.R().
		SetContext(ctx).
		Get(url)

	if errors.Is(err, resty.ErrResponseBodyTooLarge) {
		return nil, fmt.Errorf("feed from %s exceeds %d bytes: %w", url, f.maxBody, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed from %s: %w", url, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode(), url)
	}

	return resp.Body(), nil
}
