package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/philosophy-walker/pkg/utils"
)

const pageKeyPrefix = "page:"

// PageCacheRepoImpl provides a concrete implementation for the PageCacheRepository interface using Redis.
type PageCacheRepoImpl struct {
	client *redis.Client
}

// NewPageCacheRepo creates a new instance of PageCacheRepoImpl.
func NewPageCacheRepo(client *redis.Client) *PageCacheRepoImpl {
	return &PageCacheRepoImpl{client: client}
}

// generateKey creates a consistent Redis key for a given URL by hashing it.
func (r *PageCacheRepoImpl) generateKey(url string) string {
	return fmt.Sprintf("%s%s", pageKeyPrefix, utils.HashURL(url))
}

// Get returns the cached HTML for a page. A missing key is a miss, not an error.
func (r *PageCacheRepoImpl) Get(ctx context.Context, url string) (string, bool, error) {
	html, err := r.client.Get(ctx, r.generateKey(url)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return html, true, nil
}

// Set caches the HTML of a page with an expiry.
func (r *PageCacheRepoImpl) Set(ctx context.Context, url, html string, ttl time.Duration) error {
	// SETEX is atomic and sets the key with an expiry.
	return r.client.SetEx(ctx, r.generateKey(url), html, ttl).Err()
}
