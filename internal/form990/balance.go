package form990

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/form990-cli/internal/schedule"
)

// ProcessBalance extracts financial totals using the variant's balance table
// and computes its derived fields. It returns a nil record when the schedule
// or the configured part is missing.
func ProcessBalance(ctx context.Context, f schedule.Fetcher, filingID string, spec *BalanceSpec) (*Record, error) {
	if spec == nil {
		return nil, ErrUnimplementedVariant
	}
	log := zap.L().With(zap.String("component", "form990.balance"), zap.String("object_id", filingID))

	res, err := f.Fetch(ctx, filingID, spec.Schedule)
	if errors.Is(err, schedule.ErrNoSchedule) {
		log.Warn("balance schedule missing", zap.String("schedule", spec.Schedule))
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "form990: fetch %s for %s", spec.Schedule, filingID)
	}

	part, ok := res.Part(spec.Part)
	if !ok {
		log.Warn("balance part missing", zap.String("part", spec.Part))
		return nil, nil
	}

	rec := extract(part, spec.Fields, log)
	for _, d := range spec.Derived {
		var v any
		if sum := Combine(intValue(rec, d.Left), intValue(rec, d.Right)); sum != nil {
			v = *sum
		}
		rec.Set(d.Output, v)
	}
	return rec, nil
}
