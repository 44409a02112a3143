// Package aggregate turns classified reads into per-sample relative
// abundance profiles.
//
// Reads that are ambiguous at the requested rank, that have no taxon
// label, or whose confidence is below the threshold are dropped. The
// remaining reads are grouped by their exact taxon label, so a label that
// is a prefix of another ("Bacteroides", "Bacteroides fragilis") is never
// counted twice.
package aggregate

import (
	"maps"
	"math"
	"slices"

	"github.com/rs/zerolog"

	"github.com/agentstation/panmap/pkg/taxa"
)

// Stats counts what happened to the records of one sample at one rank.
type Stats struct {
	Accepted      int64 `json:"accepted" yaml:"accepted"`
	Ambiguous     int64 `json:"ambiguous" yaml:"ambiguous"`
	LowConfidence int64 `json:"low_confidence" yaml:"low_confidence"`
	Malformed     int64 `json:"malformed" yaml:"malformed"`
}

// Seen returns the number of records offered to the counter.
func (s Stats) Seen() int64 {
	return s.Accepted + s.Ambiguous + s.LowConfidence + s.Malformed
}

// Result is the outcome of aggregating one sample at one rank.
type Result struct {
	Rank    taxa.Rank
	Profile taxa.Profile
	// Total is the number of accepted reads.
	Total int64
	Stats Stats
}

// Aggregator builds abundance profiles. It holds configuration only and is
// safe for concurrent use.
type Aggregator struct {
	minConfidence float64
	logger        *zerolog.Logger
}

// New creates an Aggregator.
func New(opts ...Option) (*Aggregator, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &Aggregator{minConfidence: o.minConfidence, logger: o.logger}, nil
}

// MinConfidence returns the configured confidence threshold.
func (a *Aggregator) MinConfidence() float64 {
	return a.minConfidence
}

// Aggregate builds the profile of sample at rank from records.
func (a *Aggregator) Aggregate(sample string, records []taxa.Record, rank taxa.Rank) Result {
	c := a.Counter(sample, rank)
	for _, r := range records {
		c.Add(r)
	}
	return c.Result()
}

// Aggregate builds a profile with the default options and returns it with
// the accepted read count.
func Aggregate(sample string, records []taxa.Record, rank taxa.Rank) (taxa.Profile, int64) {
	a, _ := New()
	res := a.Aggregate(sample, records, rank)
	return res.Profile, res.Total
}

// Counter accumulates records for one sample at one rank. It lets callers
// stream a classifier file once and feed every rank without holding all
// records in memory. A Counter is not safe for concurrent use.
type Counter struct {
	sample        string
	rank          taxa.Rank
	minConfidence float64
	logger        *zerolog.Logger
	counts        map[string]int64
	stats         Stats
}

// Counter returns a new Counter for sample at rank.
func (a *Aggregator) Counter(sample string, rank taxa.Rank) *Counter {
	return &Counter{
		sample:        sample,
		rank:          rank,
		minConfidence: a.minConfidence,
		logger:        a.logger,
		counts:        make(map[string]int64),
	}
}

// Add offers one record to the counter.
func (c *Counter) Add(r taxa.Record) {
	as := r.At(c.rank)
	switch {
	case as.Ambiguous:
		c.stats.Ambiguous++
	case as.Taxon == "" || math.IsNaN(as.Confidence):
		c.stats.Malformed++
		c.logger.Debug().
			Str("sample", c.sample).
			Str("rank", c.rank.String()).
			Str("read", r.Read).
			Msg("Skipping malformed record")
	case as.Confidence < c.minConfidence:
		c.stats.LowConfidence++
	default:
		c.stats.Accepted++
		c.counts[as.Taxon]++
	}
}

// Stats returns the counts so far.
func (c *Counter) Stats() Stats {
	return c.stats
}

// Result normalizes the accepted counts into a profile. With no accepted
// records the profile is empty and the total is zero.
func (c *Counter) Result() Result {
	var total int64
	for _, taxon := range slices.Sorted(maps.Keys(c.counts)) {
		total += c.counts[taxon]
	}

	abundance := make(map[string]float64, len(c.counts))
	if total > 0 {
		for taxon, n := range c.counts {
			abundance[taxon] = float64(n) / float64(total)
		}
	}

	c.logger.Debug().
		Str("sample", c.sample).
		Str("rank", c.rank.String()).
		Int64("accepted", c.stats.Accepted).
		Int64("ambiguous", c.stats.Ambiguous).
		Int64("low_confidence", c.stats.LowConfidence).
		Int64("malformed", c.stats.Malformed).
		Int("taxa", len(abundance)).
		Msg("Aggregated sample")

	return Result{
		Rank:    c.rank,
		Profile: taxa.NewProfile(c.sample, abundance),
		Total:   total,
		Stats:   c.stats,
	}
}
