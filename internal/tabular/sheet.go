package tabular

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/agentstation/panmap/pkg/errors"
)

// Sheet is a parsed delimited file with a header row.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// ReadSheet parses delimited text with a header row. Rows may be ragged.
// Empty input yields an empty sheet.
func ReadSheet(r io.Reader, comma rune) (*Sheet, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	sheet := &Sheet{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, &errors.ParseError{
				Format:  formatName(comma),
				Line:    line,
				Message: err.Error(),
				Err:     err,
			}
		}
		if sheet.Header == nil {
			if len(record) > 0 {
				record[0] = strings.TrimPrefix(record[0], "\ufeff")
			}
			sheet.Header = record
			continue
		}
		sheet.Rows = append(sheet.Rows, record)
	}
	return sheet, nil
}

// ReadSheetFile reads a sheet from path, choosing the delimiter from the
// extension.
func ReadSheetFile(path string) (*Sheet, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheet, err := ReadSheet(f, Comma(path))
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return sheet, nil
}

// Index returns the position of the named column, or -1. Header cells are
// compared after trimming surrounding whitespace.
func (s *Sheet) Index(name string) int {
	for i, h := range s.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Require returns the positions of the named columns, or a ColumnError
// naming every missing column.
func (s *Sheet) Require(table, path string, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, name := range names {
		idx[i] = s.Index(name)
		if idx[i] < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewColumnError(table, path, missing, s.Header)
	}
	return idx, nil
}

// Cell returns row[i], or "" when the row is too short.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func formatName(comma rune) string {
	if comma == ',' {
		return "csv"
	}
	return "tsv"
}
