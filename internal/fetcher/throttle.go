package fetcher

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Throttle paces requests to one host. An adaptive throttle halves its rate
// whenever the host pushes back (S3 answers 503 SlowDown, sometimes 429) and
// wins back a fifth on every success, staying within [base/4, base*2].
type Throttle struct {
	mu       sync.Mutex
	lim      *rate.Limiter
	floor    rate.Limit
	ceil     rate.Limit
	adaptive bool
}

// NewThrottle returns an adaptive throttle starting at perSec requests per
// second.
func NewThrottle(perSec float64, burst int) *Throttle {
	base := rate.Limit(perSec)
	return &Throttle{
		lim:      rate.NewLimiter(base, burst),
		floor:    base / 4,
		ceil:     base * 2,
		adaptive: true,
	}
}

// FixedThrottle returns a throttle whose rate never changes.
func FixedThrottle(perSec float64, burst int) *Throttle {
	base := rate.Limit(perSec)
	return &Throttle{lim: rate.NewLimiter(base, burst), floor: base, ceil: base}
}

// Wait blocks until a request may be sent or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.lim.Wait(ctx)
}

// Rate returns the current requests-per-second limit.
func (t *Throttle) Rate() rate.Limit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lim.Limit()
}

func (t *Throttle) slowDown(host string) {
	if !t.adaptive {
		return
	}
	t.mu.Lock()
	next := max(t.lim.Limit()/2, t.floor)
	t.lim.SetLimit(next)
	t.mu.Unlock()

	zap.L().Warn("fetcher: host pushed back, lowering rate",
		zap.String("host", host),
		zap.Float64("rate", float64(next)),
	)
}

func (t *Throttle) speedUp() {
	if !t.adaptive {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lim.SetLimit(min(t.lim.Limit()*1.2, t.ceil))
}

// DefaultHosts returns adaptive throttles for the hosts serving e-file XML.
// Both names resolve to the same bucket, so they share one budget.
func DefaultHosts() map[string]*Throttle {
	s3 := NewThrottle(20, 20)
	return map[string]*Throttle{
		"s3.amazonaws.com":              s3,
		"irs-form-990.s3.amazonaws.com": s3,
	}
}
