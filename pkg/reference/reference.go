// Package reference holds the lookup data taxa are reconciled against: the
// catalog of canonical names with a metabolic reconstruction and the table
// of synonyms that maps observed names onto canonical ones.
//
// Both are immutable once built. Matching is exact; no case folding or
// whitespace normalization is applied.
package reference

import (
	"slices"
)

// Catalog is an ordered set of canonical taxon names.
type Catalog struct {
	names []string
	index map[string]struct{}
}

// NewCatalog builds a catalog from names, keeping the first occurrence of
// each name and skipping empty ones.
func NewCatalog(names ...string) *Catalog {
	c := &Catalog{index: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := c.index[n]; ok {
			continue
		}
		c.index[n] = struct{}{}
		c.names = append(c.names, n)
	}
	return c
}

// Contains reports whether name is in the catalog.
func (c *Catalog) Contains(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[name]
	return ok
}

// Names returns the catalog names in first-occurrence order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.names)
}

// Len returns the number of distinct names.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Synonym maps a name as observed in abundance data to its canonical name.
type Synonym struct {
	Query     string `json:"query" yaml:"query"`
	Canonical string `json:"canonical" yaml:"canonical"`
}

// Synonyms is a query to canonical name mapping.
type Synonyms struct {
	entries   []Synonym
	canonical map[string]string
	conflicts []Synonym
}

// NewSynonyms builds a synonym table. Entries with an empty query or
// canonical name are skipped. When a query appears more than once the first
// entry wins; later entries naming a different canonical are reported by
// Conflicts.
func NewSynonyms(entries ...Synonym) *Synonyms {
	s := &Synonyms{canonical: make(map[string]string, len(entries))}
	for _, e := range entries {
		if e.Query == "" || e.Canonical == "" {
			continue
		}
		if prev, ok := s.canonical[e.Query]; ok {
			if prev != e.Canonical {
				s.conflicts = append(s.conflicts, e)
			}
			continue
		}
		s.canonical[e.Query] = e.Canonical
		s.entries = append(s.entries, e)
	}
	return s
}

// Lookup returns the canonical name for query.
func (s *Synonyms) Lookup(query string) (string, bool) {
	if s == nil {
		return "", false
	}
	c, ok := s.canonical[query]
	return c, ok
}

// Len returns the number of distinct queries.
func (s *Synonyms) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns the retained entries in first-occurrence order.
func (s *Synonyms) Entries() []Synonym {
	if s == nil {
		return nil
	}
	return slices.Clone(s.entries)
}

// Conflicts returns the entries dropped because their query was already
// mapped to a different canonical name.
func (s *Synonyms) Conflicts() []Synonym {
	if s == nil {
		return nil
	}
	return slices.Clone(s.conflicts)
}
