// Package taxa defines the core data types shared by the aggregation, merge
// and reconciliation stages: ranks, classifier records, per-sample
// abundance profiles, combined abundance tables and read counts.
package taxa

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/panmap/pkg/errors"
)

// Rank is a taxonomic rank panmap aggregates at.
type Rank string

const (
	// Species is the species rank.
	Species Rank = "species"
	// Genus is the genus rank.
	Genus Rank = "genus"
)

// Ranks returns every supported rank, species first.
func Ranks() []Rank {
	return []Rank{Species, Genus}
}

// String returns the string representation of a rank.
func (r Rank) String() string {
	return string(r)
}

// Title returns the title-cased rank name used in table headers ("Species").
func (r Rank) Title() string {
	return cases.Title(language.English).String(string(r))
}

// Valid reports whether r is a supported rank.
func (r Rank) Valid() bool {
	return r == Species || r == Genus
}

// ParseRank parses a rank name, case-insensitively.
func ParseRank(s string) (Rank, error) {
	r := Rank(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", &errors.ValidationError{
			Field:   "rank",
			Value:   s,
			Message: "must be one of species, genus",
		}
	}
	return r, nil
}
