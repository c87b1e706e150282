// Package bootstrap assembles the page fetcher chain shared by the API server
// and the CLI.
package bootstrap

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/philosophy-walker/internal/adapter/cachedfetch"
	"github.com/user/philosophy-walker/internal/adapter/chromedp_fetcher"
	"github.com/user/philosophy-walker/internal/adapter/httpfetch"
	"github.com/user/philosophy-walker/internal/adapter/memory"
	redis_adapter "github.com/user/philosophy-walker/internal/adapter/redis"
	"github.com/user/philosophy-walker/internal/repository"
	"github.com/user/philosophy-walker/pkg/config"
	"github.com/user/philosophy-walker/pkg/metrics"
)

// NewPageFetcher builds the fetcher selected by FETCH_MODE, wrapped in the
// page cache selected by PAGE_CACHE. rdb may be nil unless PAGE_CACHE is redis.
// The returned func releases the fetcher's browsers and must be called once
// the fetcher is no longer used.
func NewPageFetcher(cfg *config.Config, rdb *redis.Client, m *metrics.Metrics, logger *zap.Logger) (repository.PageFetcher, func(), error) {
	var (
		fetcher repository.PageFetcher
		release = func() {}
	)
	switch cfg.FetchMode {
	case "http", "":
		fetcher = httpfetch.NewHTTPFetcher(httpfetch.Options{
			Timeout:   cfg.FetchTimeout(),
			Retries:   cfg.FetchRetries,
			RPS:       cfg.FetchRPS,
			Burst:     cfg.FetchBurst,
			UserAgent: cfg.UserAgent,
		}, m, logger)
	case "browser":
		concurrency := max(cfg.QueueWorkers, cfg.BatchConcurrency, 1)
		browser := chromedp_fetcher.NewChromedpFetcher(concurrency, cfg.FetchTimeout(), cfg.UserAgent, m, logger)
		fetcher = browser
		release = func() { _ = browser.Close() }
	default:
		return nil, nil, fmt.Errorf("unknown fetch mode %q", cfg.FetchMode)
	}

	var cache repository.PageCacheRepository
	switch cfg.PageCache {
	case "none", "":
		return fetcher, release, nil
	case "memory":
		cache = memory.NewPageCache(cfg.PageCacheTTL(), cfg.PageCacheTTL())
	case "redis":
		if rdb == nil {
			release()
			return nil, nil, fmt.Errorf("page cache %q needs REDIS_ADDR", cfg.PageCache)
		}
		cache = redis_adapter.NewPageCacheRepo(rdb)
	default:
		release()
		return nil, nil, fmt.Errorf("unknown page cache %q", cfg.PageCache)
	}

	logger.Info("page cache enabled", zap.String("cache", cfg.PageCache), zap.Duration("ttl", cfg.PageCacheTTL()))
	return cachedfetch.NewCachedFetcher(fetcher, cache, cfg.PageCacheTTL(), m, logger), release, nil
}
