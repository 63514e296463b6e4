package form990

import (
	"go.uber.org/zap"
)

// ObjectIDField is the output column carrying the filing identifier.
const ObjectIDField = "object_id"

// FlattenOptions controls row generation.
type FlattenOptions struct {
	// EmitEmpty produces a single header and balance row for filings with no
	// person records instead of dropping them.
	EmitEmpty bool
}

// Flatten returns one row per person record. Each row merges person, balance
// and header fields (later layers win on name collisions), passes every name
// through the filing's remap, and sets ObjectIDField.
//
// A filing without person records yields no rows unless opts.EmitEmpty is set.
func (f *Filing) Flatten(opts FlattenOptions) []*Record {
	if len(f.People) == 0 {
		if !opts.EmitEmpty {
			if f.Header != nil || f.Balance != nil {
				zap.L().Warn("no person records, header and balance data not emitted",
					zap.String("object_id", f.ID),
				)
			}
			return []*Record{}
		}
		return []*Record{f.row(nil)}
	}

	rows := make([]*Record, 0, len(f.People))
	for _, p := range f.People {
		rows = append(rows, f.row(p))
	}
	return rows
}

func (f *Filing) row(person *Record) *Record {
	row := merge(f.remap, person, f.Balance, f.Header)
	row.Set(ObjectIDField, f.ID)
	return row
}

// merge layers records in order so later layers overwrite earlier ones.
// Nil layers are skipped.
func merge(remap Remap, layers ...*Record) *Record {
	out := NewRecord()
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		for _, k := range layer.keys {
			out.Set(remap.Name(k), layer.values[k])
		}
	}
	return out
}
