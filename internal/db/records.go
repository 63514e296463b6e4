package db

import (
	"github.com/sells-group/form990-cli/internal/form990"
)

// RowsFromRecords converts records into a column list and value matrix for
// COPY. Columns are the union of record keys in first-seen order; a record
// lacking a column contributes nil.
func RowsFromRecords(records []*form990.Record) ([]string, [][]any) {
	var columns []string
	seen := make(map[string]bool)
	for _, r := range records {
		for _, k := range r.Keys() {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}

	rows := make([][]any, len(records))
	for i, r := range records {
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j], _ = r.Get(c)
		}
		rows[i] = row
	}
	return columns, rows
}
