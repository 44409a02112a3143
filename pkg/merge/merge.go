// Package merge combines per-sample abundance profiles into one table per
// rank. Taxa are unioned and missing cells are zero. When the same sample
// appears more than once its values are summed, never overwritten, and the
// result does not depend on the order of the inputs.
package merge

import (
	"github.com/agentstation/panmap/pkg/taxa"
)

// Profiles merges per-sample profiles into a combined table.
func Profiles(profiles ...taxa.Profile) taxa.Table {
	b := taxa.NewBuilder()
	for _, p := range profiles {
		b.AddProfile(p)
	}
	return b.Table()
}

// Tables merges already-combined tables.
func Tables(tables ...taxa.Table) taxa.Table {
	b := taxa.NewBuilder()
	for _, t := range tables {
		b.AddTable(t)
	}
	return b.Table()
}

// ReadCounts merges read-count tables additively.
func ReadCounts(counts ...taxa.ReadCounts) taxa.ReadCounts {
	merged := make(taxa.ReadCounts)
	for _, rc := range counts {
		for sample, n := range rc {
			merged[sample] += n
		}
	}
	return merged
}
