package tabular

import (
	"io"
	"slices"
	"strings"

	"github.com/agentstation/panmap/pkg/constants"
	"github.com/agentstation/panmap/pkg/errors"
)

// WriteRecords writes a header and string rows as TSV. Tabs and newlines
// inside cells are replaced by spaces so every record stays on one line.
func WriteRecords(w io.Writer, header []string, rows [][]string) error {
	var sb strings.Builder
	writeLine := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				sb.WriteByte('\t')
			}
			sb.WriteString(sanitize(c))
		}
		sb.WriteByte('\n')
	}

	writeLine(header)
	for _, row := range rows {
		writeLine(row)
	}
	_, err := io.WriteString(w, sb.String())
	return errors.WrapIO("write", "records", err)
}

// ReadManifest returns the accessions listed in a manifest, in file order
// and without duplicates. The manifest must have an accession column.
func ReadManifest(r io.Reader, comma rune, path string) ([]string, error) {
	sheet, err := ReadSheet(r, comma)
	if err != nil {
		return nil, err
	}
	idx, err := sheet.Require("manifest", path, constants.ManifestAccessionColumn)
	if err != nil {
		return nil, err
	}

	var accessions []string
	for _, row := range sheet.Rows {
		acc := strings.TrimSpace(Cell(row, idx[0]))
		if acc == "" || slices.Contains(accessions, acc) {
			continue
		}
		accessions = append(accessions, acc)
	}
	return accessions, nil
}

// ReadManifestFile reads a manifest from path. Files ending in .csv are
// comma-separated; .txt and .tsv are tab-separated.
func ReadManifestFile(path string) ([]string, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadManifest(f, Comma(path), path)
}

func sanitize(cell string) string {
	return strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(cell)
}
