package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/user/philosophy-walker/internal/repository"
	"github.com/user/philosophy-walker/pkg/metrics"
)

// maxPageSize caps how much of a response body is read.
const maxPageSize = 8 << 20

// Options configures an HTTPFetcher.
type Options struct {
	Timeout   time.Duration
	Retries   int
	RPS       float64
	Burst     int
	UserAgent string
}

// HTTPFetcher implements repository.PageFetcher with a plain HTTP client.
// It is safe for concurrent use; all callers share one rate limiter.
type HTTPFetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	retries   int
	userAgent string
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewHTTPFetcher creates a new fetcher. At most one retry is attempted per
// page, and only for transient failures.
func NewHTTPFetcher(opts Options, m *metrics.Metrics, logger *zap.Logger) *HTTPFetcher {
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	retries := min(max(opts.Retries, 0), 1)

	return &HTTPFetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		limiter:   rate.NewLimiter(limit, burst),
		retries:   retries,
		userAgent: opts.UserAgent,
		metrics:   m,
		logger:    logger,
	}
}

// statusError is returned for any non-200 response.
type statusError struct {
	code     int
	sentinel error
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%v (status %d)", e.sentinel, e.code)
}

func (e *statusError) Unwrap() error {
	return e.sentinel
}

func (f *HTTPFetcher) Fetch(ctx context.Context, address string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			f.logger.Debug("retrying page fetch", zap.String("url", address), zap.Error(lastErr))
		}

		start := time.Now()
		html, err := f.fetchOnce(ctx, address)
		f.metrics.ObservePageFetch("http", err == nil, time.Since(start).Seconds())
		if err == nil {
			return html, nil
		}
		lastErr = err

		if ctx.Err() != nil || !transient(err) {
			break
		}
	}
	return "", lastErr
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, address string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrNavigationFailed, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", fmt.Errorf("%w: %v", repository.ErrFetchTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", repository.ErrNavigationFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", &statusError{code: resp.StatusCode, sentinel: repository.ErrPageNotFound}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &statusError{code: resp.StatusCode, sentinel: repository.ErrContentRestricted}
	default:
		return "", &statusError{code: resp.StatusCode, sentinel: repository.ErrNavigationFailed}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", fmt.Errorf("%w: reading body: %v", repository.ErrFetchTimeout, err)
		}
		return "", fmt.Errorf("%w: reading body: %v", repository.ErrNavigationFailed, err)
	}
	return string(body), nil
}

// transient reports whether a failed fetch is worth one more attempt.
func transient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	return errors.Is(err, repository.ErrFetchTimeout) || errors.Is(err, repository.ErrNavigationFailed)
}
