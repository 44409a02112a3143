package tabular

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/agentstation/panmap/pkg/constants"
	"github.com/agentstation/panmap/pkg/errors"
	"github.com/agentstation/panmap/pkg/taxa"
)

// WriteTable writes t as TSV. The first header cell is corner (usually the
// rank title) followed by one column per sample. Values use the shortest
// representation that round-trips, so equal tables serialize to identical
// bytes. Tabs and line breaks inside names are written as spaces.
func WriteTable(w io.Writer, corner string, t taxa.Table) error {
	bw := bufio.NewWriter(w)

	header := []string{sanitize(corner)}
	for _, s := range t.Samples() {
		header = append(header, sanitize(s))
	}
	if _, err := bw.WriteString(strings.Join(header, "\t") + "\n"); err != nil {
		return errors.WrapIO("write", "table", err)
	}

	for _, row := range t.Rows() {
		cells := make([]string, 0, len(row.Values)+1)
		cells = append(cells, sanitize(row.Taxon))
		for _, v := range row.Values {
			cells = append(cells, FormatFloat(v))
		}
		if _, err := bw.WriteString(strings.Join(cells, "\t") + "\n"); err != nil {
			return errors.WrapIO("write", "table", err)
		}
	}
	return errors.WrapIO("write", "table", bw.Flush())
}

// ReadTable parses an abundance table: the first column holds taxa and
// every other header cell names a sample. Empty cells read as 0. Repeated
// taxa or sample columns are summed.
func ReadTable(r io.Reader, comma rune) (taxa.Table, error) {
	sheet, err := ReadSheet(r, comma)
	if err != nil {
		return taxa.Table{}, err
	}

	b := taxa.NewBuilder()
	if len(sheet.Header) == 0 {
		return b.Table(), nil
	}

	samples := sheet.Header[1:]
	for _, s := range samples {
		b.AddSample(strings.TrimSpace(s))
	}

	for i, row := range sheet.Rows {
		taxon := Cell(row, 0)
		if taxon == "" {
			continue
		}
		b.AddTaxon(taxon)
		for j, sample := range samples {
			cell := strings.TrimSpace(Cell(row, j+1))
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return taxa.Table{}, &errors.ParseError{
					Format:  formatName(comma),
					Line:    i + 2,
					Message: "invalid abundance " + strconv.Quote(cell),
					Err:     err,
				}
			}
			b.Add(taxon, strings.TrimSpace(sample), v)
		}
	}
	return b.Table(), nil
}

// ReadTableFile reads an abundance table from path.
func ReadTableFile(path string) (taxa.Table, error) {
	f, err := Open(path)
	if err != nil {
		return taxa.Table{}, err
	}
	defer func() { _ = f.Close() }()

	t, err := ReadTable(f, Comma(path))
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return taxa.Table{}, err
	}
	return t, nil
}

// WriteReadCounts writes read counts as TSV, one sample per row.
func WriteReadCounts(w io.Writer, rc taxa.ReadCounts) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("Sample\t" + constants.TotalReadsHeader + "\n"); err != nil {
		return errors.WrapIO("write", "read counts", err)
	}
	for _, sample := range rc.Samples() {
		if _, err := bw.WriteString(sample + "\t" + strconv.FormatInt(rc[sample], 10) + "\n"); err != nil {
			return errors.WrapIO("write", "read counts", err)
		}
	}
	return errors.WrapIO("write", "read counts", bw.Flush())
}

// ReadReadCounts parses a read count table. Repeated samples are summed.
func ReadReadCounts(r io.Reader, comma rune) (taxa.ReadCounts, error) {
	sheet, err := ReadSheet(r, comma)
	if err != nil {
		return nil, err
	}
	idx, err := sheet.Require("read count table", "", constants.TotalReadsHeader)
	if err != nil {
		return nil, err
	}

	rc := make(taxa.ReadCounts)
	for i, row := range sheet.Rows {
		sample := Cell(row, 0)
		if sample == "" {
			continue
		}
		cell := strings.TrimSpace(Cell(row, idx[0]))
		if cell == "" {
			rc[sample] += 0
			continue
		}
		n, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, &errors.ParseError{
				Format:  formatName(comma),
				Line:    i + 2,
				Message: "invalid read count " + strconv.Quote(cell),
				Err:     err,
			}
		}
		rc[sample] += int64(n)
	}
	return rc, nil
}

// ReadReadCountsFile reads a read count table from path.
func ReadReadCountsFile(path string) (taxa.ReadCounts, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rc, err := ReadReadCounts(f, Comma(path))
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return rc, nil
}

// FormatFloat renders v in its shortest round-tripping form.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
