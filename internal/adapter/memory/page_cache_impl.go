package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/user/philosophy-walker/pkg/utils"
)

// PageCacheImpl keeps fetched pages in process memory.
type PageCacheImpl struct {
	cache *cache.Cache
}

// NewPageCache creates an in-memory page cache. Expired pages are purged every cleanupInterval.
func NewPageCache(defaultTTL, cleanupInterval time.Duration) *PageCacheImpl {
	return &PageCacheImpl{cache: cache.New(defaultTTL, cleanupInterval)}
}

func (c *PageCacheImpl) Get(ctx context.Context, address string) (string, bool, error) {
	val, found := c.cache.Get(utils.HashURL(address))
	if !found {
		return "", false, nil
	}
	html, ok := val.(string)
	if !ok {
		return "", false, nil
	}
	return html, true, nil
}

func (c *PageCacheImpl) Set(ctx context.Context, address, html string, ttl time.Duration) error {
	c.cache.Set(utils.HashURL(address), html, ttl)
	return nil
}

// Count returns the number of cached pages, including expired ones not yet purged.
func (c *PageCacheImpl) Count() int {
	return c.cache.ItemCount()
}
