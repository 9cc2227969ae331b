// Package httpcache memoizes raw upstream responses keyed by the fully
// resolved request URL, with a caller-chosen TTL per fetch. Each provider
// endpoint has its own freshness window, so the TTL travels with the call
// rather than with the cache.
package httpcache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Doer abstracts HTTP request execution.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is a memoized upstream response. Bodies are kept whole: the
// providers return small JSON documents, the largest being the 5-day hourly
// air quality series.
type Response struct {
	StatusCode int
	Body       []byte
}

// Config holds settings for the cache.
type Config struct {
	// Doer executes requests on a cache miss.
	Doer Doer

	// Logger for cache operations.
	Logger zerolog.Logger

	// CleanupInterval is how often expired entries are swept out
	// opportunistically during writes. Default: 5 minutes.
	CleanupInterval time.Duration
}

// Cache is a time-boxed memoization layer over a Doer. Concurrent misses for
// the same URL are collapsed into one upstream fetch; once warm, every caller
// observes the same stored response until it expires.
type Cache struct {
	doer   Doer
	logger zerolog.Logger

	mu      sync.RWMutex
	entries map[string]entry

	group singleflight.Group

	lastCleanup     time.Time
	cleanupInterval time.Duration
}

type entry struct {
	resp      Response
	expiresAt time.Time
}

// New creates a cache over the given Doer.
func New(cfg Config) *Cache {
	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 5 * time.Minute
	}

	return &Cache{
		doer:            cfg.Doer,
		logger:          cfg.Logger,
		entries:         make(map[string]entry),
		cleanupInterval: cleanupInterval,
	}
}

// Get returns the response for url, fetching it when absent or expired.
// Only 2xx responses are stored; provider error envelopes ride on non-2xx
// statuses and are handed back uncached so a transient provider failure is
// not pinned for a whole freshness window.
func (c *Cache) Get(ctx context.Context, url string, ttl time.Duration) (Response, error) {
	c.mu.RLock()
	if e, ok := c.entries[url]; ok && time.Now().Before(e.expiresAt) {
		c.mu.RUnlock()
		return e.resp, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(url, func() (interface{}, error) {
		return c.fetch(ctx, url, ttl)
	})
	if err != nil {
		return Response{}, err
	}
	return v.(Response), nil
}

// fetch performs the upstream request and stores a cacheable result.
func (c *Cache) fetch(ctx context.Context, url string, ttl time.Duration) (Response, error) {
	// A concurrent caller may have filled the entry between the read lock
	// and the singleflight slot.
	c.mu.RLock()
	if e, ok := c.entries[url]; ok && time.Now().Before(e.expiresAt) {
		c.mu.RUnlock()
		return e.resp, nil
	}
	c.mu.RUnlock()

	// The fetch is shared by every caller collapsed onto this singleflight
	// slot, so it must not die with the first caller's context. WithoutCancel
	// keeps the context values but detaches cancellation; the transport's own
	// timeout still bounds the call.
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodGet, url, http.NoBody)
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}

	httpResp, err := c.doer.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response body: %w", err)
	}

	resp := Response{StatusCode: httpResp.StatusCode, Body: body}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && ttl > 0 {
		now := time.Now()
		c.mu.Lock()
		c.entries[url] = entry{resp: resp, expiresAt: now.Add(ttl)}
		c.cleanupLocked(now)
		c.mu.Unlock()

		c.logger.Debug().
			Str("url", url).
			Dur("ttl", ttl).
			Msg("cached upstream response")
	}

	return resp, nil
}

// cleanupLocked sweeps expired entries if the cleanup interval has passed.
// Caller holds the write lock.
func (c *Cache) cleanupLocked(now time.Time) {
	if now.Sub(c.lastCleanup) < c.cleanupInterval {
		return
	}
	c.lastCleanup = now

	expired := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			expired++
		}
	}
	if expired > 0 {
		c.logger.Debug().
			Int("expired_entries", expired).
			Msg("swept expired cache entries")
	}
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
