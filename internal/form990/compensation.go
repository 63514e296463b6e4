package form990

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/form990-cli/internal/schedule"
)

// ProcessCompensation extracts one person record per entry of the variant's
// compensation group, in source order. It returns nil when the schedule or
// the group is missing, and an empty slice when the group has no entries.
func ProcessCompensation(ctx context.Context, f schedule.Fetcher, filingID string, spec *CompensationSpec) ([]*Record, error) {
	if spec == nil {
		return nil, ErrUnimplementedVariant
	}
	log := zap.L().With(zap.String("component", "form990.compensation"), zap.String("object_id", filingID))

	res, err := f.Fetch(ctx, filingID, spec.Schedule)
	if errors.Is(err, schedule.ErrNoSchedule) {
		log.Warn("compensation schedule missing", zap.String("schedule", spec.Schedule))
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "form990: fetch %s for %s", spec.Schedule, filingID)
	}

	entries, ok := res.Group(spec.Group)
	if !ok {
		log.Warn("compensation group missing", zap.String("group", spec.Group))
		return nil, nil
	}

	people := make([]*Record, 0, len(entries))
	for _, entry := range entries {
		people = append(people, extract(entry, spec.Fields, log))
	}
	return people, nil
}
