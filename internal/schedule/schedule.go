// Package schedule turns raw IRS e-file return XML into IRSx-style schedule
// results: named parts of flat variables and groups of repeated entries.
package schedule

import (
	"context"

	"github.com/rotisserie/eris"
)

// Schedule names understood by the runner.
const (
	ReturnHeader = "ReturnHeader990x"
	IRS990       = "IRS990"
	IRS990EZ     = "IRS990EZ"
	IRS990PF     = "IRS990PF"
	ScheduleJ    = "IRS990ScheduleJ"
)

// ErrNoSchedule is returned when a filing does not contain the requested schedule.
var ErrNoSchedule = eris.New("schedule: not present in filing")

// Part maps IRSx variable names to their raw string values.
type Part map[string]string

// Result holds the parsed contents of one schedule of one filing.
type Result struct {
	Name   string
	Parts  map[string]Part
	Groups map[string][]Part
}

// Part returns the named part and whether it was present.
func (r *Result) Part(name string) (Part, bool) {
	if r == nil {
		return nil, false
	}
	p, ok := r.Parts[name]
	return p, ok
}

// Group returns the entries of the named group and whether the group was present.
func (r *Result) Group(name string) ([]Part, bool) {
	if r == nil {
		return nil, false
	}
	g, ok := r.Groups[name]
	return g, ok
}

// Fetcher returns structured schedule data for a filing.
type Fetcher interface {
	// Fetch returns the named schedule of the filing, or ErrNoSchedule
	// when the filing does not carry it.
	Fetch(ctx context.Context, filingID string, name string) (*Result, error)
}
