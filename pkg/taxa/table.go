package taxa

import (
	"maps"
	"slices"
)

// Table is an abundance matrix of taxa (rows) by samples (columns). Rows
// and columns are sorted lexicographically. A Table is immutable; use a
// Builder to make a new one.
type Table struct {
	taxa    []string
	samples []string
	values  [][]float64
	rows    map[string]int
	cols    map[string]int
}

// Row is one taxon and its per-sample values, in sample order.
type Row struct {
	Taxon  string
	Values []float64
}

// Taxa returns the row keys.
func (t Table) Taxa() []string {
	return slices.Clone(t.taxa)
}

// Samples returns the column keys.
func (t Table) Samples() []string {
	return slices.Clone(t.samples)
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.taxa)
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool {
	return len(t.taxa) == 0
}

// Has reports whether taxon is a row of the table.
func (t Table) Has(taxon string) bool {
	_, ok := t.rows[taxon]
	return ok
}

// Value returns the cell at (taxon, sample), or 0 when either is absent.
func (t Table) Value(taxon, sample string) float64 {
	i, ok := t.rows[taxon]
	if !ok {
		return 0
	}
	j, ok := t.cols[sample]
	if !ok {
		return 0
	}
	return t.values[i][j]
}

// Row returns a copy of the values for taxon.
func (t Table) Row(taxon string) ([]float64, bool) {
	i, ok := t.rows[taxon]
	if !ok {
		return nil, false
	}
	return slices.Clone(t.values[i]), true
}

// Rows returns a copy of every row in order.
func (t Table) Rows() []Row {
	rows := make([]Row, len(t.taxa))
	for i, taxon := range t.taxa {
		rows[i] = Row{Taxon: taxon, Values: slices.Clone(t.values[i])}
	}
	return rows
}

// Column returns the non-zero values of one sample keyed by taxon.
func (t Table) Column(sample string) map[string]float64 {
	col := make(map[string]float64)
	j, ok := t.cols[sample]
	if !ok {
		return col
	}
	for i, taxon := range t.taxa {
		if v := t.values[i][j]; v != 0 {
			col[taxon] = v
		}
	}
	return col
}

// Builder accumulates cells for a Table. Adding to an existing cell sums
// the values. Contributions to a cell are summed in ascending order when
// the table is built, so the result does not depend on the order of the
// Add calls. The zero value is not usable; call NewBuilder.
type Builder struct {
	cells   map[string]map[string][]float64
	samples map[string]struct{}
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		cells:   make(map[string]map[string][]float64),
		samples: make(map[string]struct{}),
	}
}

// AddSample declares a sample column, so it appears even with no taxa.
func (b *Builder) AddSample(sample string) {
	b.samples[sample] = struct{}{}
}

// AddTaxon declares a row, so it appears even with all-zero values.
func (b *Builder) AddTaxon(taxon string) {
	if _, ok := b.cells[taxon]; !ok {
		b.cells[taxon] = make(map[string][]float64)
	}
}

// Add sums v into the cell at (taxon, sample).
func (b *Builder) Add(taxon, sample string, v float64) {
	b.AddSample(sample)
	b.AddTaxon(taxon)
	b.cells[taxon][sample] = append(b.cells[taxon][sample], v)
}

// AddProfile adds every taxon of p under the profile's sample.
func (b *Builder) AddProfile(p Profile) {
	b.AddSample(p.sample)
	for taxon, v := range p.abundance {
		b.Add(taxon, p.sample, v)
	}
}

// AddTable adds every cell of t. Rows and columns of t are carried over
// even when all their values are zero.
func (b *Builder) AddTable(t Table) {
	for _, sample := range t.samples {
		b.AddSample(sample)
	}
	for i, taxon := range t.taxa {
		b.AddTaxon(taxon)
		for j, sample := range t.samples {
			b.cells[taxon][sample] = append(b.cells[taxon][sample], t.values[i][j])
		}
	}
}

// Table builds the sorted, zero-filled table.
func (b *Builder) Table() Table {
	t := Table{
		taxa:    slices.Sorted(maps.Keys(b.cells)),
		samples: slices.Sorted(maps.Keys(b.samples)),
	}
	t.rows = make(map[string]int, len(t.taxa))
	t.cols = make(map[string]int, len(t.samples))
	for j, sample := range t.samples {
		t.cols[sample] = j
	}
	t.values = make([][]float64, len(t.taxa))
	for i, taxon := range t.taxa {
		t.rows[taxon] = i
		row := make([]float64, len(t.samples))
		for j, sample := range t.samples {
			row[j] = sum(b.cells[taxon][sample])
		}
		t.values[i] = row
	}
	return t
}

func sum(values []float64) float64 {
	if len(values) == 1 {
		return values[0]
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	var total float64
	for _, v := range sorted {
		total += v
	}
	return total
}
