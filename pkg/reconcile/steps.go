package reconcile

import (
	"maps"
	"slices"
	"strings"

	"github.com/agentstation/panmap/pkg/constants"
	"github.com/agentstation/panmap/pkg/reference"
	"github.com/agentstation/panmap/pkg/taxa"
)

// The engine is a chain of the functions below. Each takes immutable
// inputs and returns new values.

// matchName returns the name taxon is looked up under. With spaced set,
// underscores read as spaces.
func matchName(taxon string, spaced bool) string {
	if spaced {
		return strings.ReplaceAll(taxon, "_", " ")
	}
	return taxon
}

// classify decides each taxon. The catalog takes precedence over synonyms.
// Every input taxon gets its own decision, even when two of them share a
// match name.
func classify(names []string, spaced bool, catalog *reference.Catalog, synonyms *reference.Synonyms) []Decision {
	decisions := make([]Decision, 0, len(names))
	for _, taxon := range names {
		name := matchName(taxon, spaced)
		d := Decision{Query: taxon, Name: name, Status: Absent}
		if catalog.Contains(name) {
			d.Status = Present
			d.Canonical = name
		} else if canonical, ok := synonyms.Lookup(name); ok {
			d.Status = Renamed
			d.Canonical = canonical
		}
		decisions = append(decisions, d)
	}
	return decisions
}

// canonicalize assigns the output key of every found decision.
func canonicalize(decisions []Decision, prefix string) []Decision {
	out := slices.Clone(decisions)
	for i := range out {
		if out[i].Found() {
			out[i].Key = Key(prefix, out[i].Canonical)
		}
	}
	return out
}

// Key returns the output row name of a canonical taxon name.
func Key(prefix, canonical string) string {
	return prefix + strings.ReplaceAll(canonical, " ", "_")
}

// collapse sums the rows of found taxa under their keys and reports keys
// fed by more than one taxon.
func collapse(t taxa.Table, decisions []Decision) (taxa.Table, []Collision) {
	b := taxa.NewBuilder()
	samples := t.Samples()
	for _, s := range samples {
		b.AddSample(s)
	}

	sources := make(map[string][]string)
	for _, d := range decisions {
		if !d.Found() {
			continue
		}
		sources[d.Key] = append(sources[d.Key], d.Query)
		row, _ := t.Row(d.Query)
		b.AddTaxon(d.Key)
		for j, v := range row {
			b.Add(d.Key, samples[j], v)
		}
	}

	var collisions []Collision
	for _, key := range slices.Sorted(maps.Keys(sources)) {
		if qs := sources[key]; len(qs) > 1 {
			slices.Sort(qs)
			collisions = append(collisions, Collision{Key: key, Taxa: qs})
		}
	}
	return b.Table(), collisions
}

// audit lays out the audit table: absent taxa, then present, then renamed,
// each block sorted by match name. Taxa sharing a match name keep one row
// each, in input order.
func audit(decisions []Decision) []AuditRow {
	blocks := map[Status][]AuditRow{}
	for _, d := range decisions {
		row := AuditRow{Query: d.Name}
		switch d.Status {
		case Present:
			row.Status = constants.StatusPresent
		case Renamed:
			row.Status = d.Canonical
		default:
			row.Status = constants.StatusAbsent
		}
		blocks[d.Status] = append(blocks[d.Status], row)
	}

	rows := make([]AuditRow, 0, len(decisions))
	for _, s := range []Status{Absent, Present, Renamed} {
		block := blocks[s]
		slices.SortStableFunc(block, func(a, b AuditRow) int {
			return strings.Compare(a.Query, b.Query)
		})
		rows = append(rows, block...)
	}
	return rows
}

func tally(decisions []Decision, table taxa.Table, collisions []Collision) Stats {
	s := Stats{Taxa: len(decisions), Rows: table.Len(), Collisions: len(collisions)}
	for _, d := range decisions {
		switch d.Status {
		case Present:
			s.Present++
		case Renamed:
			s.Renamed++
		default:
			s.Absent++
		}
	}
	return s
}
