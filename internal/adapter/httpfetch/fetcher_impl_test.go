package httpfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/philosophy-walker/internal/repository"
	"github.com/user/philosophy-walker/pkg/metrics"
)

type wikiServer struct {
	*httptest.Server
	flakyCalls atomic.Int32
	downCalls  atomic.Int32
	userAgent  atomic.Value
}

func newWikiServer(t *testing.T) *wikiServer {
	t.Helper()
	s := &wikiServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/wiki/Ok", func(w http.ResponseWriter, r *http.Request) {
		s.userAgent.Store(r.UserAgent())
		_, _ = w.Write([]byte("<html>ok</html>"))
	})
	mux.HandleFunc("/wiki/Private", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/wiki/Flaky", func(w http.ResponseWriter, r *http.Request) {
		if s.flakyCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("<html>recovered</html>"))
	})
	mux.HandleFunc("/wiki/Down", func(w http.ResponseWriter, r *http.Request) {
		s.downCalls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/wiki/Slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func newTestFetcher(retries int, timeout time.Duration, m *metrics.Metrics) *HTTPFetcher {
	return NewHTTPFetcher(Options{
		Timeout:   timeout,
		Retries:   retries,
		UserAgent: "philosophy-walker-test",
	}, m, zap.NewNop())
}

func TestFetchReturnsBody(t *testing.T) {
	srv := newWikiServer(t)
	m := metrics.New(prometheus.NewRegistry())
	f := newTestFetcher(1, time.Second, m)

	html, err := f.Fetch(context.Background(), srv.URL+"/wiki/Ok")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", html)
	assert.Equal(t, "philosophy-walker-test", srv.userAgent.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageFetchesTotal.WithLabelValues("http", "success")))
}

func TestFetchMapsStatusCodes(t *testing.T) {
	srv := newWikiServer(t)
	f := newTestFetcher(1, time.Second, nil)

	testCases := []struct {
		path string
		want error
	}{
		{path: "/wiki/Missing", want: repository.ErrPageNotFound},
		{path: "/wiki/Private", want: repository.ErrContentRestricted},
		{path: "/wiki/Down", want: repository.ErrNavigationFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), srv.URL+tc.path)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFetchRetriesTransientFailureOnce(t *testing.T) {
	srv := newWikiServer(t)
	f := newTestFetcher(1, time.Second, nil)

	html, err := f.Fetch(context.Background(), srv.URL+"/wiki/Flaky")
	require.NoError(t, err)
	assert.Equal(t, "<html>recovered</html>", html)
	assert.EqualValues(t, 2, srv.flakyCalls.Load())

	_, err = f.Fetch(context.Background(), srv.URL+"/wiki/Down")
	assert.Error(t, err)
	assert.EqualValues(t, 2, srv.downCalls.Load(), "never more than one extra attempt")
}

func TestFetchWithoutRetries(t *testing.T) {
	srv := newWikiServer(t)
	f := newTestFetcher(0, time.Second, nil)

	_, err := f.Fetch(context.Background(), srv.URL+"/wiki/Flaky")
	assert.ErrorIs(t, err, repository.ErrNavigationFailed)
	assert.EqualValues(t, 1, srv.flakyCalls.Load())
}

func TestFetchRetriesAreCapped(t *testing.T) {
	f := NewHTTPFetcher(Options{Retries: 5}, nil, zap.NewNop())
	assert.Equal(t, 1, f.retries)
}

func TestFetchTimeout(t *testing.T) {
	srv := newWikiServer(t)
	f := newTestFetcher(0, 50*time.Millisecond, nil)

	_, err := f.Fetch(context.Background(), srv.URL+"/wiki/Slow")
	assert.ErrorIs(t, err, repository.ErrFetchTimeout)
}

func TestFetchHonoursCancelledContext(t *testing.T) {
	srv := newWikiServer(t)
	f := newTestFetcher(1, time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, srv.URL+"/wiki/Ok")
	assert.ErrorIs(t, err, context.Canceled)
}
