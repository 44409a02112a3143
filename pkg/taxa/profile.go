package taxa

import (
	"maps"
	"slices"
)

// Profile is the relative abundance of each taxon within one sample.
// A Profile is read-only once built.
type Profile struct {
	sample    string
	abundance map[string]float64
}

// NewProfile creates a profile for sample from a copy of abundance.
func NewProfile(sample string, abundance map[string]float64) Profile {
	return Profile{sample: sample, abundance: maps.Clone(abundance)}
}

// Sample returns the sample identifier.
func (p Profile) Sample() string {
	return p.sample
}

// Taxa returns the taxa in the profile, sorted.
func (p Profile) Taxa() []string {
	return slices.Sorted(maps.Keys(p.abundance))
}

// Abundance returns the abundance of taxon, or 0 when absent.
func (p Profile) Abundance(taxon string) float64 {
	return p.abundance[taxon]
}

// Len returns the number of taxa.
func (p Profile) Len() int {
	return len(p.abundance)
}

// Empty reports whether the profile has no taxa.
func (p Profile) Empty() bool {
	return len(p.abundance) == 0
}

// Sum returns the total abundance, summed in taxon order so the result is
// reproducible.
func (p Profile) Sum() float64 {
	var sum float64
	for _, taxon := range p.Taxa() {
		sum += p.abundance[taxon]
	}
	return sum
}

// Table returns the profile as a single-column table.
func (p Profile) Table() Table {
	b := NewBuilder()
	b.AddProfile(p)
	return b.Table()
}
