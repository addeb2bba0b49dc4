package backend

import (
	"context"
	"sync"
	"time"

	"svcboard/internal/controller"
	"svcboard/internal/model"
)

// Cached serves listings from memory for ttl and drops the cache after every
// control call, so reconciliation right after an operation always reaches
// the real backend.
type Cached struct {
	inner controller.Backend
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	items   []model.Item
	fetched time.Time
}

// NewCached wraps inner.
func NewCached(inner controller.Backend, ttl time.Duration) *Cached {
	return &Cached{inner: inner, ttl: ttl, now: time.Now}
}

// Unwrap returns the wrapped backend.
func (c *Cached) Unwrap() controller.Backend {
	return c.inner
}

func (c *Cached) ListItems(ctx context.Context) ([]model.Item, error) {
	c.mu.RLock()
	if !c.fetched.IsZero() && c.now().Sub(c.fetched) <= c.ttl {
		out := append([]model.Item(nil), c.items...)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	items, err := c.inner.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.items = append([]model.Item(nil), items...)
	c.fetched = c.now()
	c.mu.Unlock()
	return items, nil
}

func (c *Cached) Start(ctx context.Context, id string) error {
	defer c.Invalidate()
	return c.inner.Start(ctx, id)
}

func (c *Cached) Stop(ctx context.Context, id string) error {
	defer c.Invalidate()
	return c.inner.Stop(ctx, id)
}

func (c *Cached) Restart(ctx context.Context, id string) error {
	defer c.Invalidate()
	return c.inner.Restart(ctx, id)
}

// Invalidate forgets the cached listing.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.items = nil
	c.fetched = time.Time{}
	c.mu.Unlock()
}
