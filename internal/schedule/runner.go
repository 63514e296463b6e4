package schedule

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Runner implements Fetcher over a Source. Each filing document is opened
// and parsed once; later schedule requests for the same filing reuse it.
// A Runner is not safe for concurrent use.
type Runner struct {
	src    Source
	parsed map[string]*Filing
}

// NewRunner creates a Runner reading documents from src.
func NewRunner(src Source) *Runner {
	return &Runner{src: src, parsed: make(map[string]*Filing)}
}

// Load returns the parsed filing, opening the document on first use.
func (r *Runner) Load(ctx context.Context, filingID string) (*Filing, error) {
	if f, ok := r.parsed[filingID]; ok {
		return f, nil
	}

	body, err := r.src.Open(ctx, filingID)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	f, err := Parse(body)
	if err != nil {
		return nil, eris.Wrapf(err, "schedule: parse filing %s", filingID)
	}

	zap.L().Debug("filing loaded",
		zap.String("object_id", filingID),
		zap.String("return_type", f.ReturnType()),
		zap.String("version", f.Version()),
	)
	r.parsed[filingID] = f
	return f, nil
}

// Fetch implements Fetcher.
func (r *Runner) Fetch(ctx context.Context, filingID string, name string) (*Result, error) {
	f, err := r.Load(ctx, filingID)
	if err != nil {
		return nil, err
	}
	return f.Schedule(name)
}
