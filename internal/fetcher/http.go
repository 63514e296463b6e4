package fetcher

import (
	"context"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNotFound is returned when the server answers 404.
var ErrNotFound = eris.New("fetcher: not found")

const (
	defaultTimeout   = 30 * time.Second
	defaultRetries   = 3
	defaultUserAgent = "form990-cli/1.0"
	maxRetryDelay    = 30 * time.Second
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// Hosts maps a host name to its throttle. Nil means DefaultHosts. Hosts
	// not listed share one fixed throttle.
	Hosts map[string]*Throttle
}

// HTTPFetcher implements Fetcher over net/http. Every attempt waits on the
// host's throttle; network errors and 5xx answers are retried with jittered
// exponential delay.
type HTTPFetcher struct {
	client    *http.Client
	opts      HTTPOptions
	fallback  *Throttle
	baseDelay time.Duration
}

// NewHTTPFetcher creates an HTTPFetcher, filling unset options with defaults.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultRetries
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Hosts == nil {
		opts.Hosts = DefaultHosts()
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				MaxConnsPerHost:     20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:      opts,
		fallback:  FixedThrottle(20, 20),
		baseDelay: time.Second,
	}
}

func (f *HTTPFetcher) throttleFor(host string) *Throttle {
	if t, ok := f.opts.Hosts[host]; ok {
		return t
	}
	return f.fallback
}

// get sends req until it gets an answer worth returning or runs out of
// attempts. 4xx answers other than 429 are returned to the caller as is.
func (f *HTTPFetcher) get(ctx context.Context, req *http.Request) (*http.Response, error) {
	host := req.URL.Host
	th := f.throttleFor(host)
	log := zap.L().With(zap.String("url", req.URL.String()))

	var lastErr error
	var wait time.Duration
	for attempt := 1; attempt <= f.opts.MaxRetries; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, eris.Wrap(err, "fetcher: retry wait")
			}
		}
		if err := th.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: throttle wait")
		}

		resp, err := f.client.Do(req.Clone(ctx))
		wait = f.retryDelay(attempt)
		switch {
		case err != nil:
			lastErr = err
			log.Warn("fetcher: request failed", zap.Int("attempt", attempt), zap.Error(err))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
			th.slowDown(host)
			if d, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
				wait = d
			}
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, host)
		case resp.StatusCode >= 500:
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, host)
			log.Warn("fetcher: server error", zap.Int("attempt", attempt), zap.Int("status", resp.StatusCode))
		default:
			th.speedUp()
			return resp, nil
		}
	}
	return nil, eris.Wrapf(lastErr, "fetcher: gave up after %d attempts", f.opts.MaxRetries)
}

// retryDelay doubles from baseDelay per attempt, capped, plus up to half
// again as jitter.
func (f *HTTPFetcher) retryDelay(attempt int) time.Duration {
	d := min(f.baseDelay<<(attempt-1), maxRetryDelay)
	if d <= 0 {
		return 0
	}
	return d + rand.N(d/2+1)
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(v string) (time.Duration, bool) {
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	return min(time.Duration(secs)*time.Second, maxRetryDelay), true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Download fetches rawURL and returns the response body. A 404 yields
// ErrNotFound.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: build request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.get(ctx, req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: download %s", rawURL)
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, eris.Wrapf(ErrNotFound, "download %s", rawURL)
	default:
		_ = resp.Body.Close()
		return nil, eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, rawURL)
	}
}

// DownloadToFile fetches rawURL into path and returns the bytes written.
func (f *HTTPFetcher) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	out, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrapf(err, "fetcher: create %s", path)
	}
	n, err := io.Copy(out, body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, eris.Wrapf(err, "fetcher: write %s", path)
}
