package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFetcher returns a fetcher with millisecond retry delays. hosts may be
// nil for the defaults.
func testFetcher(retries int, hosts map[string]*Throttle) *HTTPFetcher {
	f := NewHTTPFetcher(HTTPOptions{
		UserAgent:  "form990-test",
		Timeout:    5 * time.Second,
		MaxRetries: retries,
		Hosts:      hosts,
	})
	f.baseDelay = time.Millisecond
	return f
}

func hostOf(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return u.Host
}

// flakyServer answers status for the first n requests, then serves body.
func flakyServer(t *testing.T, n int32, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) <= n {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestDownload_SendsUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "form990-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("<Return/>"))
	}))
	defer srv.Close()

	body, err := testFetcher(1, nil).Download(context.Background(), srv.URL+"/1_public.xml")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "<Return/>", string(data))
}

func TestDownload_RetriesServerErrors(t *testing.T) {
	srv, hits := flakyServer(t, 2, http.StatusBadGateway, "ok")

	body, err := testFetcher(3, nil).Download(context.Background(), srv.URL)
	require.NoError(t, err)
	body.Close()
	assert.Equal(t, int32(3), hits.Load())
}

func TestDownload_GivesUp(t *testing.T) {
	srv, hits := flakyServer(t, 100, http.StatusInternalServerError, "")

	_, err := testFetcher(2, nil).Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gave up after 2 attempts")
	assert.Equal(t, int32(2), hits.Load())
}

func TestDownload_NotFound(t *testing.T) {
	srv, hits := flakyServer(t, 100, http.StatusNotFound, "")

	_, err := testFetcher(3, nil).Download(context.Background(), srv.URL+"/201711109349301001_public.xml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, int32(1), hits.Load(), "404 is final")
}

func TestDownload_ClientErrorNotRetried(t *testing.T) {
	srv, hits := flakyServer(t, 100, http.StatusForbidden, "")

	_, err := testFetcher(3, nil).Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")
	assert.Equal(t, int32(1), hits.Load())
}

func TestDownload_CancelledContext(t *testing.T) {
	srv, _ := flakyServer(t, 0, 0, "ok")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testFetcher(1, nil).Download(ctx, srv.URL)
	require.Error(t, err)
}

func TestDownload_CancelDuringRetryWait(t *testing.T) {
	srv, hits := flakyServer(t, 100, http.StatusInternalServerError, "")
	f := testFetcher(5, nil)
	f.baseDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.Download(ctx, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDownload_SlowDownLowersHostRate(t *testing.T) {
	for _, status := range []int{http.StatusServiceUnavailable, http.StatusTooManyRequests} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv, hits := flakyServer(t, 2, status, "ok")
			th := NewThrottle(100, 100)
			f := testFetcher(3, map[string]*Throttle{hostOf(t, srv): th})

			body, err := f.Download(context.Background(), srv.URL)
			require.NoError(t, err)
			body.Close()

			assert.Equal(t, int32(3), hits.Load())
			// 100 -> 50 -> 25, then one success: 30.
			assert.InDelta(t, 30.0, float64(th.Rate()), 0.01)
		})
	}
}

func TestDownload_HonoursRetryAfter(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	start := time.Now()
	body, err := testFetcher(2, nil).Download(context.Background(), srv.URL)
	require.NoError(t, err)
	body.Close()
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestDownload_UnlistedHostUsesFixedRate(t *testing.T) {
	srv, _ := flakyServer(t, 1, http.StatusServiceUnavailable, "ok")
	f := testFetcher(2, map[string]*Throttle{})

	body, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	body.Close()
	assert.InDelta(t, 20.0, float64(f.fallback.Rate()), 0.001)
}

func TestDownload_ThrottlePacesRequests(t *testing.T) {
	srv, hits := flakyServer(t, 0, 0, "ok")
	f := testFetcher(1, map[string]*Throttle{hostOf(t, srv): FixedThrottle(4, 1)})

	start := time.Now()
	for range 3 {
		body, err := f.Download(context.Background(), srv.URL)
		require.NoError(t, err)
		body.Close()
	}
	assert.Equal(t, int32(3), hits.Load())
	// Burst 1 at 4/s: the second and third requests wait 250ms each.
	assert.GreaterOrEqual(t, time.Since(start), 450*time.Millisecond)
}

func TestDownloadToFile(t *testing.T) {
	srv, _ := flakyServer(t, 0, 0, "<Return>990</Return>")
	path := filepath.Join(t.TempDir(), "1_public.xml")

	n, err := testFetcher(1, nil).DownloadToFile(context.Background(), srv.URL, path)
	require.NoError(t, err)
	assert.Equal(t, int64(20), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<Return>990</Return>", string(data))
}

func TestDownloadToFile_Errors(t *testing.T) {
	missing, _ := flakyServer(t, 100, http.StatusNotFound, "")
	_, err := testFetcher(1, nil).DownloadToFile(context.Background(), missing.URL, filepath.Join(t.TempDir(), "x.xml"))
	assert.ErrorIs(t, err, ErrNotFound)

	ok, _ := flakyServer(t, 0, 0, "ok")
	_, err = testFetcher(1, nil).DownloadToFile(context.Background(), ok.URL, filepath.Join(t.TempDir(), "no", "such", "dir.xml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetcher: create")
}

func TestNewHTTPFetcher_Defaults(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{})
	assert.Equal(t, defaultUserAgent, f.opts.UserAgent)
	assert.Equal(t, defaultTimeout, f.client.Timeout)
	assert.Equal(t, defaultRetries, f.opts.MaxRetries)
	assert.Contains(t, f.opts.Hosts, "irs-form-990.s3.amazonaws.com")

	tr, ok := f.client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 20, tr.MaxConnsPerHost)
}

func TestRetryDelay(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{})
	for attempt, want := range map[int]time.Duration{1: time.Second, 2: 2 * time.Second, 3: 4 * time.Second, 10: maxRetryDelay} {
		d := f.retryDelay(attempt)
		assert.GreaterOrEqual(t, d, want, "attempt %d", attempt)
		assert.LessOrEqual(t, d, want+want/2, "attempt %d", attempt)
	}
}

func TestRetryAfter(t *testing.T) {
	d, ok := retryAfter("3")
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, d)

	d, ok = retryAfter("600")
	assert.True(t, ok)
	assert.Equal(t, maxRetryDelay, d)

	for _, v := range []string{"", "-1", "Wed, 21 Oct 2015 07:28:00 GMT"} {
		_, ok := retryAfter(v)
		assert.False(t, ok, v)
	}
}
