package reference

import (
	"context"
	"io"
	"strings"

	"github.com/agentstation/panmap/internal/tabular"
	"github.com/agentstation/panmap/pkg/constants"
	"github.com/agentstation/panmap/pkg/logging"
)

// SynonymColumns names the query and canonical columns of a synonym table.
type SynonymColumns struct {
	Query     string
	Canonical string
}

// DefaultSynonymColumns returns the column names of the published synonym
// table.
func DefaultSynonymColumns() SynonymColumns {
	return SynonymColumns{
		Query:     constants.DefaultQueryColumn,
		Canonical: constants.DefaultCanonicalColumn,
	}
}

// LoadCatalog reads the named column of a delimited reference table. path
// is only used in error messages.
func LoadCatalog(ctx context.Context, r io.Reader, comma rune, column, path string) (*Catalog, error) {
	sheet, err := tabular.ReadSheet(r, comma)
	if err != nil {
		return nil, err
	}
	idx, err := sheet.Require("reference catalog", path, column)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		names = append(names, strings.TrimSpace(tabular.Cell(row, idx[0])))
	}
	catalog := NewCatalog(names...)

	logging.FromContext(ctx).Debug().
		Str("column", column).
		Int("rows", len(sheet.Rows)).
		Int("names", catalog.Len()).
		Msg("Loaded reference catalog")
	return catalog, nil
}

// LoadCatalogFile reads a reference catalog from a TSV or CSV file.
func LoadCatalogFile(ctx context.Context, path, column string) (*Catalog, error) {
	f, err := tabular.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return LoadCatalog(ctx, f, tabular.Comma(path), column, path)
}

// LoadSynonyms reads a delimited synonym table. path is only used in
// messages.
func LoadSynonyms(ctx context.Context, r io.Reader, comma rune, cols SynonymColumns, path string) (*Synonyms, error) {
	sheet, err := tabular.ReadSheet(r, comma)
	if err != nil {
		return nil, err
	}
	idx, err := sheet.Require("synonym table", path, cols.Query, cols.Canonical)
	if err != nil {
		return nil, err
	}

	entries := make([]Synonym, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		entries = append(entries, Synonym{
			Query:     strings.TrimSpace(tabular.Cell(row, idx[0])),
			Canonical: strings.TrimSpace(tabular.Cell(row, idx[1])),
		})
	}
	synonyms := NewSynonyms(entries...)

	logger := logging.FromContext(ctx)
	for _, c := range synonyms.Conflicts() {
		kept, _ := synonyms.Lookup(c.Query)
		logger.Warn().
			Str("query", c.Query).
			Str("kept", kept).
			Str("dropped", c.Canonical).
			Msg("Synonym query listed twice, keeping first mapping")
	}
	logger.Debug().
		Int("rows", len(sheet.Rows)).
		Int("synonyms", synonyms.Len()).
		Msg("Loaded synonym table")
	return synonyms, nil
}

// LoadSynonymsFile reads a synonym table from a TSV or CSV file.
func LoadSynonymsFile(ctx context.Context, path string, cols SynonymColumns) (*Synonyms, error) {
	f, err := tabular.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return LoadSynonyms(ctx, f, tabular.Comma(path), cols, path)
}
