// Package reconcile matches the taxa of a combined abundance table against
// a reference catalog and a synonym table.
//
// Every taxon is classified as present (in the catalog), renamed (a synonym
// of a catalog name) or absent. Present and renamed taxa are written under
// their canonical name with spaces replaced by underscores and a marker
// prefix added, summing taxa that land on the same name. Absent taxa are
// dropped from the table but kept in the audit.
//
// Matching is exact. Given the same inputs the engine always produces the
// same table and audit.
package reconcile

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/panmap/pkg/errors"
	"github.com/agentstation/panmap/pkg/logging"
	"github.com/agentstation/panmap/pkg/reference"
	"github.com/agentstation/panmap/pkg/taxa"
)

// Engine reconciles tables against one catalog and synonym table. It holds
// no mutable state and is safe for concurrent use.
type Engine struct {
	catalog  *reference.Catalog
	synonyms *reference.Synonyms
	prefix   string
	strategy Strategy
	spaced   bool
	logger   *zerolog.Logger
}

// New creates an Engine. A nil synonym table is treated as empty.
func New(catalog *reference.Catalog, synonyms *reference.Synonyms, opts ...Option) (*Engine, error) {
	if catalog == nil {
		return nil, &errors.ValidationError{
			Field:   "catalog",
			Message: "cannot be nil",
		}
	}
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	if synonyms == nil {
		synonyms = reference.NewSynonyms()
	}
	return &Engine{
		catalog:  catalog,
		synonyms: synonyms,
		prefix:   o.prefix,
		strategy: o.strategy,
		spaced:   o.spaced,
		logger:   o.logger,
	}, nil
}

// Strategy returns the engine's collision strategy.
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// Reconcile classifies every taxon of table and builds the reconciled
// table and audit. Finding no taxon is not an error; the result has
// Found set to false and an empty table. Under the strict strategy a
// collision returns a ConflictError.
func (e *Engine) Reconcile(ctx context.Context, rank taxa.Rank, table taxa.Table) (*Result, error) {
	start := time.Now()
	logger := e.loggerFor(ctx).With().Str("rank", rank.String()).Logger()

	decisions := canonicalize(classify(table.Taxa(), e.spaced, e.catalog, e.synonyms), e.prefix)
	reconciled, collisions := collapse(table, decisions)

	for _, c := range collisions {
		if err := e.strategy.Resolve(c); err != nil {
			return nil, err
		}
		logger.Debug().
			Str("key", c.Key).
			Strs("taxa", c.Taxa).
			Msg("Summed taxa sharing a canonical name")
	}

	stats := tally(decisions, reconciled, collisions)
	result := &Result{
		Rank:       rank,
		Table:      reconciled,
		Decisions:  decisions,
		Audit:      audit(decisions),
		Collisions: collisions,
		Found:      stats.Present+stats.Renamed > 0,
		Stats:      stats,
		Metadata: ResultMetadata{
			Strategy:  e.strategy.Type(),
			Prefix:    e.prefix,
			StartTime: start,
			Duration:  time.Since(start),
		},
	}

	if !result.Found {
		logger.Info().
			Int("taxa", stats.Taxa).
			Msgf("No %s found in reference catalog", rank)
	} else {
		logger.Debug().
			Int("present", stats.Present).
			Int("renamed", stats.Renamed).
			Int("absent", stats.Absent).
			Int("rows", stats.Rows).
			Msg("Reconciled taxa")
	}
	return result, nil
}

func (e *Engine) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := logging.FromContext(ctx); l != logging.Default() {
		return l
	}
	return e.logger
}

// Reconcile runs a default engine over table.
func Reconcile(ctx context.Context, rank taxa.Rank, table taxa.Table, catalog *reference.Catalog, synonyms *reference.Synonyms) (*Result, error) {
	e, err := New(catalog, synonyms)
	if err != nil {
		return nil, err
	}
	return e.Reconcile(ctx, rank, table)
}
