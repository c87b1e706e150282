package cachedfetch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/philosophy-walker/internal/repository"
	"github.com/user/philosophy-walker/pkg/metrics"
)

// CachedFetcher is a read-through cache in front of another PageFetcher.
// Cache failures are logged and the page is fetched as if it were a miss.
type CachedFetcher struct {
	next    repository.PageFetcher
	cache   repository.PageCacheRepository
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewCachedFetcher(
	next repository.PageFetcher,
	cache repository.PageCacheRepository,
	ttl time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) *CachedFetcher {
	return &CachedFetcher{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
	}
}

func (f *CachedFetcher) Fetch(ctx context.Context, address string) (string, error) {
	html, found, err := f.cache.Get(ctx, address)
	switch {
	case err != nil:
		f.metrics.IncPageCache("error")
		f.logger.Warn("page cache lookup failed", zap.String("url", address), zap.Error(err))
	case found:
		f.metrics.IncPageCache("hit")
		return html, nil
	default:
		f.metrics.IncPageCache("miss")
	}

	html, err = f.next.Fetch(ctx, address)
	if err != nil {
		return "", err
	}

	if err := f.cache.Set(ctx, address, html, f.ttl); err != nil {
		f.logger.Warn("failed to cache page", zap.String("url", address), zap.Error(err))
	}
	return html, nil
}
