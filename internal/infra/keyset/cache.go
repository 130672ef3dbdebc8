package keyset

import (
	"context"
	"sync"
	"time"

	"provelope/internal/domain"
)

const (
	defaultCacheTTL      = 5 * time.Minute
	defaultCacheMaxStale = 15 * time.Minute
)

type entryState int

const (
	entryMissing entryState = iota
	entryFresh
	entryStale
)

type cacheEntry struct {
	keySet     *domain.KeySet
	expiresAt  time.Time
	staleUntil time.Time
}

// Cache wraps a Fetcher with a read-mostly TTL cache keyed by url. Entries
// past their TTL but inside the stale window are served while a background
// refresh runs; refreshes are single-flight per url. Population races are
// benign: refetching produces the same key set.
type Cache struct {
	inner    Fetcher
	ttl      time.Duration
	maxStale time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry

	refreshMu  sync.Mutex
	refreshing map[string]chan struct{}
	lastErr    map[string]error
}

func NewCache(inner Fetcher, ttl, maxStale time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if maxStale <= 0 {
		maxStale = defaultCacheMaxStale
	}
	return &Cache{
		inner:      inner,
		ttl:        ttl,
		maxStale:   maxStale,
		now:        time.Now,
		entries:    map[string]cacheEntry{},
		refreshing: map[string]chan struct{}{},
		lastErr:    map[string]error{},
	}
}

func (c *Cache) FetchKeySet(ctx context.Context, url string) (*domain.KeySet, error) {
	if ks, state := c.lookup(url, c.now()); state == entryFresh {
		return ks, nil
	} else if state == entryStale {
		c.refreshAsync(url)
		return ks, nil
	}
	if err := c.refresh(ctx, url); err != nil {
		return nil, err
	}
	if ks, state := c.lookup(url, c.now()); state != entryMissing {
		return ks, nil
	}
	return nil, context.DeadlineExceeded
}

func (c *Cache) lookup(url string, now time.Time) (*domain.KeySet, entryState) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[url]
	if !ok {
		return nil, entryMissing
	}
	if now.Before(entry.expiresAt) {
		return entry.keySet, entryFresh
	}
	if now.Before(entry.staleUntil) {
		return entry.keySet, entryStale
	}
	return nil, entryMissing
}

func (c *Cache) refreshAsync(url string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
	go func() {
		_ = c.refresh(ctx, url)
		cancel()
	}()
}

func (c *Cache) refresh(ctx context.Context, url string) error {
	ch, leader := c.beginRefresh(url)
	if !leader {
		select {
		case <-ch:
			c.refreshMu.Lock()
			defer c.refreshMu.Unlock()
			return c.lastErr[url]
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ks, err := c.inner.FetchKeySet(ctx, url)
	if err == nil {
		now := c.now()
		c.mu.Lock()
		c.entries[url] = cacheEntry{
			keySet:     ks,
			expiresAt:  now.Add(c.ttl),
			staleUntil: now.Add(c.ttl + c.maxStale),
		}
		c.mu.Unlock()
	}
	c.finishRefresh(url, err, ch)
	return err
}

func (c *Cache) beginRefresh(url string) (chan struct{}, bool) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	if ch, ok := c.refreshing[url]; ok {
		return ch, false
	}
	ch := make(chan struct{})
	c.refreshing[url] = ch
	return ch, true
}

func (c *Cache) finishRefresh(url string, err error, ch chan struct{}) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	c.lastErr[url] = err
	close(ch)
	delete(c.refreshing, url)
}
