package form990

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/form990-cli/internal/schedule"
)

// Failures records which categories could not be extracted at all.
type Failures struct {
	Header       bool `json:"header"`
	Balance      bool `json:"balance"`
	Compensation bool `json:"compensation"`
}

// Any reports whether any category failed.
func (f Failures) Any() bool {
	return f.Header || f.Balance || f.Compensation
}

// Filing is the processed header, balance, and compensation data of one return.
// It is not modified after Build returns.
type Filing struct {
	ID       string
	Form     Form
	Header   *Record
	Balance  *Record
	People   []*Record
	Failures Failures

	remap Remap
}

// Build fetches and processes all three categories of the filing. Missing
// categories are recorded in Failures; fetcher errors and unimplemented
// variants are returned.
func Build(ctx context.Context, f schedule.Fetcher, v Variant, filingID string, remap Remap) (*Filing, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("component", "form990.filing"), zap.String("object_id", filingID))

	header, err := ProcessHeader(ctx, f, filingID)
	if err != nil {
		return nil, err
	}
	balance, err := ProcessBalance(ctx, f, filingID, v.Balance)
	if err != nil {
		return nil, eris.Wrapf(err, "form990: balance for %s", filingID)
	}
	people, err := ProcessCompensation(ctx, f, filingID, v.Compensation)
	if err != nil {
		return nil, eris.Wrapf(err, "form990: compensation for %s", filingID)
	}

	fl := &Filing{
		ID:      filingID,
		Form:    v.Form,
		Header:  header,
		Balance: balance,
		People:  people,
		Failures: Failures{
			Header:       header == nil,
			Balance:      balance == nil,
			Compensation: people == nil,
		},
		remap: remap,
	}

	log.Info("filing processed",
		zap.String("form", string(v.Form)),
		zap.Int("people", len(people)),
		zap.Bool("header_failed", fl.Failures.Header),
		zap.Bool("balance_failed", fl.Failures.Balance),
		zap.Bool("compensation_failed", fl.Failures.Compensation),
	)
	return fl, nil
}

// WithRemap returns a copy of the filing that flattens with remap instead of
// the remap given to Build.
func (f *Filing) WithRemap(remap Remap) *Filing {
	cp := *f
	cp.remap = remap
	return &cp
}

// String summarises the filing for debugging.
func (f *Filing) String() string {
	return fmt.Sprintf("object_id=%s form=%s header=%v balance=%v people=%d failures=%+v",
		f.ID, f.Form, recordMap(f.Header), recordMap(f.Balance), len(f.People), f.Failures)
}

func recordMap(r *Record) map[string]any {
	if r == nil {
		return nil
	}
	return r.Map()
}
