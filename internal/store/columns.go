package store

import (
	"github.com/sells-group/form990-cli/internal/db"
	"github.com/sells-group/form990-cli/internal/form990"
)

// typedColumns are the irs990.compensation columns produced by the default
// 990 tables without a remap.
var typedColumns = func() map[string]bool {
	v := form990.Return990()
	cols := map[string]bool{form990.ObjectIDField: true}
	for _, name := range form990.HeaderFields() {
		cols[name] = true
	}
	for _, f := range v.Balance.Fields {
		cols[f.Output] = true
	}
	for _, d := range v.Balance.Derived {
		cols[d.Output] = true
	}
	for _, f := range v.Compensation.Fields {
		cols[f.Output] = true
	}
	return cols
}()

// compensationRows lays out flattened rows for irs990.compensation: object_id
// and row_num first, then typed columns in first-seen order, then extra.
func compensationRows(objectID string, records []*form990.Record) ([]string, [][]any) {
	cols, values := db.RowsFromRecords(records)

	var typed, untyped []int
	for i, c := range cols {
		switch {
		case c == form990.ObjectIDField:
		case typedColumns[c]:
			typed = append(typed, i)
		default:
			untyped = append(untyped, i)
		}
	}

	out := []string{form990.ObjectIDField, "row_num"}
	for _, i := range typed {
		out = append(out, cols[i])
	}
	if len(untyped) > 0 {
		out = append(out, "extra")
	}

	rows := make([][]any, len(values))
	for r, v := range values {
		row := make([]any, 0, len(out))
		row = append(row, objectID, int32(r))
		for _, i := range typed {
			row = append(row, v[i])
		}
		if len(untyped) > 0 {
			extra := make(map[string]any, len(untyped))
			for _, i := range untyped {
				if v[i] != nil {
					extra[cols[i]] = v[i]
				}
			}
			if len(extra) > 0 {
				row = append(row, extra)
			} else {
				row = append(row, nil)
			}
		}
		rows[r] = row
	}
	return out, rows
}
