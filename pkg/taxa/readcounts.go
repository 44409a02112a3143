package taxa

import (
	"maps"
	"slices"
)

// ReadCounts maps a sample to the number of reads accepted by aggregation.
type ReadCounts map[string]int64

// Samples returns the sample identifiers, sorted.
func (rc ReadCounts) Samples() []string {
	return slices.Sorted(maps.Keys(rc))
}

// Total returns the sum over all samples.
func (rc ReadCounts) Total() int64 {
	var total int64
	for _, n := range rc {
		total += n
	}
	return total
}
