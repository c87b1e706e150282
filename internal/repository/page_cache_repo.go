package repository

import (
	"context"
	"time"
)

// PageCacheRepository stores fetched HTML keyed by page address.
type PageCacheRepository interface {
	// Get returns the cached page and whether it was present.
	Get(ctx context.Context, address string) (string, bool, error)
	// Set caches a page for ttl.
	Set(ctx context.Context, address, html string, ttl time.Duration) error
}
