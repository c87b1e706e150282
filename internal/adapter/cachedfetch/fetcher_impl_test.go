package cachedfetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/philosophy-walker/internal/adapter/memory"
	"github.com/user/philosophy-walker/internal/repository"
	"github.com/user/philosophy-walker/pkg/metrics"
)

type countingFetcher struct {
	calls int
	err   error
}

func (f *countingFetcher) Fetch(ctx context.Context, address string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "<html>" + address + "</html>", nil
}

type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, address string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (brokenCache) Set(ctx context.Context, address, html string, ttl time.Duration) error {
	return errors.New("connection refused")
}

const page = "https://en.wikipedia.org/wiki/Art"

func TestCachedFetcherHitAndMiss(t *testing.T) {
	next := &countingFetcher{}
	m := metrics.New(prometheus.NewRegistry())
	f := NewCachedFetcher(next, memory.NewPageCache(time.Minute, time.Minute), time.Minute, m, zap.NewNop())

	first, err := f.Fetch(context.Background(), page)
	require.NoError(t, err)
	second, err := f.Fetch(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageCacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageCacheLookups.WithLabelValues("hit")))
}

func TestCachedFetcherDoesNotCacheFailures(t *testing.T) {
	next := &countingFetcher{err: repository.ErrPageNotFound}
	f := NewCachedFetcher(next, memory.NewPageCache(time.Minute, time.Minute), time.Minute, nil, zap.NewNop())

	_, err := f.Fetch(context.Background(), page)
	assert.ErrorIs(t, err, repository.ErrPageNotFound)
	_, err = f.Fetch(context.Background(), page)
	assert.ErrorIs(t, err, repository.ErrPageNotFound)
	assert.Equal(t, 2, next.calls)
}

func TestCachedFetcherFallsThroughOnCacheErrors(t *testing.T) {
	next := &countingFetcher{}
	m := metrics.New(prometheus.NewRegistry())
	f := NewCachedFetcher(next, brokenCache{}, time.Minute, m, zap.NewNop())

	html, err := f.Fetch(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, "<html>"+page+"</html>", html)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageCacheLookups.WithLabelValues("error")))
}
