// Package export writes flattened filing rows to JSON or spreadsheet files.
package export

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/form990-cli/internal/db"
	"github.com/sells-group/form990-cli/internal/form990"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "compensation"

// WriteJSON writes rows as an indented JSON array, preserving column order.
// No rows produce an empty array.
func WriteJSON(w io.Writer, rows []*form990.Record) error {
	if rows == nil {
		rows = []*form990.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(rows), "export: encode json")
}

// WriteXLSX writes rows to a workbook at path. The first row holds the union
// of column names in first-seen order; nil values leave the cell empty.
func WriteXLSX(path string, rows []*form990.Record) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	cols, values := db.RowsFromRecords(rows)
	header := sheet.AddRow()
	for _, c := range cols {
		header.AddCell().SetString(c)
	}
	for _, v := range values {
		row := sheet.AddRow()
		for _, cell := range v {
			c := row.AddCell()
			switch x := cell.(type) {
			case nil:
			case int64:
				c.SetInt64(x)
			case string:
				c.SetString(x)
			default:
				return eris.Errorf("export: unsupported cell type %T", cell)
			}
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

// IsXLSX reports whether path names a spreadsheet output.
func IsXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}
