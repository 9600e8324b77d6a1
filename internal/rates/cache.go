package rates

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes snapshots from a Source with a TTL and keeps the previous
// snapshot around so rate deltas can be reported between refreshes.
type Cache struct {
	source Source
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu        sync.RWMutex
	current   Snapshot
	previous  Snapshot
	expiresAt time.Time
}

func NewCache(source Source, ttl time.Duration) *Cache {
	return &Cache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
	}
}

func (c *Cache) Latest(ctx context.Context) (Snapshot, error) {
	now := c.clock()

	c.mu.RLock()
	if c.current.Rates != nil && c.expiresAt.After(now) {
		snapshot := c.current
		c.mu.RUnlock()
		return snapshot, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("rates", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.current.Rates != nil && c.expiresAt.After(now) {
			snapshot := c.current
			c.mu.RUnlock()
			return snapshot, nil
		}
		c.mu.RUnlock()

		snapshot, err := c.source.Latest(ctx)
		if err != nil {
			return Snapshot{}, err
		}

		c.mu.Lock()
		if c.current.Rates != nil {
			c.previous = c.current
		}
		c.current = snapshot
		c.expiresAt = now.Add(c.ttl)
		c.mu.Unlock()
		return snapshot, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return result.(Snapshot), nil
}

// Changes returns per-currency deltas between the two most recent snapshots,
// or nil when only one fetch has happened.
func (c *Cache) Changes() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.previous.Rates == nil {
		return nil
	}
	return Delta(c.previous, c.current)
}
