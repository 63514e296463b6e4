// Package store persists flattened filing rows and a record of each build.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/form990-cli/internal/form990"
)

// Run is one recorded build of a filing.
type Run struct {
	ID        string           `json:"id"`
	ObjectID  string           `json:"object_id"`
	Form      string           `json:"form"`
	Failures  form990.Failures `json:"failures"`
	People    int              `json:"people"`
	Rows      int              `json:"rows"`
	CreatedAt time.Time        `json:"created_at"`
}

// Store defines the persistence interface for processed filings.
type Store interface {
	// SaveFiling replaces the stored rows of the filing and records the run.
	SaveFiling(ctx context.Context, f *form990.Filing, rows []*form990.Record) (*Run, error)
	// ListRuns returns the most recent runs for an object ID, newest first.
	ListRuns(ctx context.Context, objectID string, limit int) ([]Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func newRun(f *form990.Filing, rows int) *Run {
	return &Run{
		ID:        uuid.New().String(),
		ObjectID:  f.ID,
		Form:      string(f.Form),
		Failures:  f.Failures,
		People:    len(f.People),
		Rows:      rows,
		CreatedAt: time.Now().UTC(),
	}
}

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}
