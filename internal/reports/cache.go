package reports

import (
	"context"
	"sync"
	"time"
)

// EntityCache memoizes the distinct client-name list for prompt building.
// The list is read-mostly; the loader calls Invalidate after inserting new
// rows, and the TTL covers out-of-band writes.
type EntityCache struct {
	source ClientLister
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	names    []string
	loadedAt time.Time
}

func NewEntityCache(source ClientLister, ttl time.Duration) *EntityCache {
	return &EntityCache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (c *EntityCache) Names(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.names != nil && (c.ttl <= 0 || c.now().Sub(c.loadedAt) < c.ttl) {
		return append([]string(nil), c.names...), nil
	}

	names, err := c.source.ListClients(ctx)
	if err != nil {
		// Serve the stale list rather than failing resolution outright.
		if c.names != nil {
			return append([]string(nil), c.names...), nil
		}
		return nil, err
	}

	c.names = names
	c.loadedAt = c.now()
	return append([]string(nil), names...), nil
}

func (c *EntityCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = nil
	c.loadedAt = time.Time{}
}
