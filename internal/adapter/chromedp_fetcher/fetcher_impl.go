package chromedp_fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/philosophy-walker/internal/repository"
	"github.com/user/philosophy-walker/pkg/metrics"
)

// ErrFetcherClosed is returned by Fetch after Close.
var ErrFetcherClosed = errors.New("browser fetcher is closed")

type ChromedpFetcher struct {
	allocators chan context.Context
	cancels    []context.CancelFunc
	closed     chan struct{}
	closeOnce  sync.Once
	timeout    time.Duration
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewChromedpFetcher creates a page fetcher that renders pages in headless
// Chrome, one browser per allocator. Chrome starts on the first fetch that
// uses an allocator. Close stops every browser.
func NewChromedpFetcher(
	maxConcurrency int,
	pageLoadTimeout time.Duration,
	userAgent string,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ChromedpFetcher {
	maxConcurrency = max(maxConcurrency, 1)
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}

	c := &ChromedpFetcher{
		allocators: make(chan context.Context, maxConcurrency),
		cancels:    make([]context.CancelFunc, 0, maxConcurrency),
		closed:     make(chan struct{}),
		timeout:    pageLoadTimeout,
		metrics:    m,
		logger:     logger,
	}
	for i := 0; i < maxConcurrency; i++ {
		allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
		c.allocators <- allocCtx
		c.cancels = append(c.cancels, cancel)
	}
	return c
}

// Close cancels every allocator, which stops its browser process.
// It is safe to call more than once.
func (c *ChromedpFetcher) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		for _, cancel := range c.cancels {
			cancel()
		}
		c.logger.Info("browser fetcher closed", zap.Int("browsers", len(c.cancels)))
	})
	return nil
}

// acquire waits for a free allocator.
func (c *ChromedpFetcher) acquire(ctx context.Context) (context.Context, error) {
	select {
	case <-c.closed:
		return nil, ErrFetcherClosed
	default:
	}
	select {
	case allocCtx := <-c.allocators:
		return allocCtx, nil
	case <-c.closed:
		return nil, ErrFetcherClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Fetch navigates to a URL and returns the rendered document HTML.
func (c *ChromedpFetcher) Fetch(ctx context.Context, url string) (string, error) {
	allocCtx, err := c.acquire(ctx)
	if err != nil {
		return "", err
	}
	// The channel holds every allocator, so this never blocks.
	defer func() { c.allocators <- allocCtx }()

	taskCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(c.logger.Sugar().Debugf))
	defer cancel()

	taskCtx, cancel = context.WithTimeout(taskCtx, c.timeout)
	defer cancel()

	// The browser context does not derive from ctx; abort it when ctx ends.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var status atomic.Int64
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument {
			return
		}
		// Keep the first document status that is not a redirect.
		if code := resp.Response.Status; code < 300 || code >= 400 {
			status.CompareAndSwap(0, code)
		}
	})

	var html string
	startTime := time.Now()
	err = chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err == nil {
		err = statusErr(status.Load())
	}
	c.metrics.ObservePageFetch("browser", err == nil, time.Since(startTime).Seconds())

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(allocCtx.Err(), context.Canceled) {
			return "", ErrFetcherClosed
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(taskCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s after %s", repository.ErrFetchTimeout, url, c.timeout)
		}
		if errors.Is(err, repository.ErrPageNotFound) || errors.Is(err, repository.ErrContentRestricted) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", repository.ErrNavigationFailed, err)
	}

	c.logger.Debug("rendered page", zap.String("url", url), zap.Int("bytes", len(html)))
	return html, nil
}

func statusErr(status int64) error {
	switch {
	case status == 0 || status == http.StatusOK:
		return nil
	case status == http.StatusNotFound || status == http.StatusGone:
		return fmt.Errorf("%w (status %d)", repository.ErrPageNotFound, status)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", repository.ErrContentRestricted, status)
	case status >= 400:
		return fmt.Errorf("%w (status %d)", repository.ErrNavigationFailed, status)
	}
	return nil
}
