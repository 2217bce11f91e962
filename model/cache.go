// SPDX-License-Identifier: GPL-2.0-or-later

package model

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/golang/groupcache/lru"
	"github.com/golang/groupcache/singleflight"
)

// Cache keeps the most recently used models. Concurrent requests for a name
// that is not cached share a single load.
type Cache struct {
	mu     sync.Mutex
	lru    *lru.Cache
	group  singleflight.Group
	load   func(string) (Model, error)
	logger *slog.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

type CacheOption func(*Cache)

// WithLoadFunc replaces Load as the source of models.
func WithLoadFunc(f func(string) (Model, error)) CacheOption {
	return func(c *Cache) {
		c.load = f
	}
}

func WithCacheLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = l
	}
}

// NewCache returns a cache holding up to maxEntries models, 0 means no limit.
func NewCache(maxEntries int, opts ...CacheOption) *Cache {
	c := &Cache{
		lru:    lru.New(maxEntries),
		load:   Load,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	c.lru.OnEvicted = func(key lru.Key, _ interface{}) {
		c.logger.Debug("evicted model", slog.Any("name", key))
	}
	return c
}

func (c *Cache) Get(name string) (Model, error) {
	c.mu.Lock()
	v, ok := c.lru.Get(name)
	c.mu.Unlock()
	if ok {
		c.hits.Add(1)
		return v.(Model), nil
	}
	v, err := c.group.Do(name, func() (interface{}, error) {
		// a load that finished since the lookup above
		c.mu.Lock()
		v, ok := c.lru.Get(name)
		c.mu.Unlock()
		if ok {
			return v, nil
		}
		c.misses.Add(1)
		m, err := c.load(name)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.lru.Add(name, m)
		c.mu.Unlock()
		c.logger.Debug("loaded model", slog.String("name", name))
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Model), nil
}

func (c *Cache) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(name)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns the number of cache hits and of loads.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
