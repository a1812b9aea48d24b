// Package session holds state that lives for one client session.
package session

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// HostFetcher resolves the host name the inventory service is reachable under.
type HostFetcher interface {
	Host(ctx context.Context) (string, error)
}

// HostCache caches the service host for the lifetime of the session.
// Concurrent misses share a single upstream request; failures are not cached.
type HostCache struct {
	fetcher HostFetcher
	group   singleflight.Group

	mu   sync.RWMutex
	host string
}

// NewHostCache creates an empty cache backed by fetcher.
func NewHostCache(fetcher HostFetcher) *HostCache {
	return &HostCache{fetcher: fetcher}
}

// Cached returns the host if it has already been resolved.
func (c *HostCache) Cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.host, c.host != ""
}

// Get returns the cached host, fetching it on first use.
func (c *HostCache) Get(ctx context.Context) (string, error) {
	if host, ok := c.Cached(); ok {
		return host, nil
	}

	v, err, _ := c.group.Do("host", func() (any, error) {
		if host, ok := c.Cached(); ok {
			return host, nil
		}
		host, err := c.fetcher.Host(ctx)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.host = host
		c.mu.Unlock()
		return host, nil
	})
	if err != nil {
		return "", fmt.Errorf("session: resolve host: %w", err)
	}
	return v.(string), nil
}
