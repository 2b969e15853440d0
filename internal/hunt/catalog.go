package hunt

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// TokenLister lists every provisioned token code.
type TokenLister interface {
	ListTokenCodes(ctx context.Context) ([]string, error)
}

// Catalog caches the set of known token codes.
//
// Tokens are provisioned by a separate import run, so the cache is reloaded
// when older than its TTL, when Invalidate was called, and once on a miss
// before a code is reported unknown.
type Catalog struct {
	source TokenLister
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	codes    map[string]struct{}
	loadedAt time.Time
}

func NewCatalog(source TokenLister, ttl time.Duration) *Catalog {
	return &Catalog{
		source: source,
		ttl:    ttl,
		now:    time.Now,
		codes:  make(map[string]struct{}),
	}
}

// Refresh reloads the codes from the source.
func (c *Catalog) Refresh(ctx context.Context) error {
	codes, err := c.source.ListTokenCodes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load token codes: %w", err)
	}

	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}

	c.mu.Lock()
	c.codes = set
	c.loadedAt = c.now()
	c.mu.Unlock()
	return nil
}

// Invalidate forces the next lookup to reload.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.loadedAt = time.Time{}
	c.mu.Unlock()
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.codes)
}

// Contains reports whether code is a provisioned token.
func (c *Catalog) Contains(ctx context.Context, code string) (bool, error) {
	refreshed := false
	if c.stale() {
		if err := c.Refresh(ctx); err != nil {
			return false, err
		}
		refreshed = true
	}

	if c.has(code) {
		return true, nil
	}
	if refreshed {
		return false, nil
	}

	if err := c.Refresh(ctx); err != nil {
		return false, err
	}
	return c.has(code), nil
}

func (c *Catalog) has(code string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.codes[code]
	return ok
}

func (c *Catalog) stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt.IsZero() || c.now().Sub(c.loadedAt) >= c.ttl
}
