package panmap

import (
	"runtime"

	"github.com/rs/zerolog"

	"github.com/agentstation/panmap/internal/metrics"
	"github.com/agentstation/panmap/pkg/constants"
	"github.com/agentstation/panmap/pkg/errors"
	"github.com/agentstation/panmap/pkg/logging"
	"github.com/agentstation/panmap/pkg/reconcile"
	"github.com/agentstation/panmap/pkg/reference"
	"github.com/agentstation/panmap/pkg/taxa"
)

// Reference is the catalog and synonym table used to reconcile one rank.
type Reference struct {
	Catalog  *reference.Catalog
	Synonyms *reference.Synonyms
}

// Option is a function that configures a Pipeline.
type Option func(*config) error

type config struct {
	ranks         []taxa.Rank
	references    map[taxa.Rank]Reference
	minConfidence float64
	prefix        string
	strategy      reconcile.Strategy
	workers       int
	outputDir     string
	metricsFile   string
	recorder      *metrics.Recorder
	logger        *zerolog.Logger
}

func defaultConfig() *config {
	return &config{
		ranks:         taxa.Ranks(),
		references:    make(map[taxa.Rank]Reference),
		minConfidence: constants.DefaultMinConfidence,
		prefix:        constants.DefaultPanPrefix,
		strategy:      reconcile.NewSumStrategy(),
		workers:       min(constants.DefaultWorkers, runtime.NumCPU()),
		logger:        logging.Default(),
	}
}

func (c *config) apply(opts ...Option) (*config, error) {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithRanks restricts the pipeline to the given ranks.
func WithRanks(ranks ...taxa.Rank) Option {
	return func(c *config) error {
		if len(ranks) == 0 {
			return &errors.ValidationError{Field: "ranks", Message: "at least one rank is required"}
		}
		for _, r := range ranks {
			if !r.Valid() {
				return &errors.ValidationError{Field: "ranks", Value: r, Message: "unknown rank"}
			}
		}
		c.ranks = ranks
		return nil
	}
}

// WithReference sets the catalog and synonyms used to reconcile rank.
// Ranks without a reference are aggregated and merged but not reconciled.
func WithReference(rank taxa.Rank, catalog *reference.Catalog, synonyms *reference.Synonyms) Option {
	return func(c *config) error {
		if !rank.Valid() {
			return &errors.ValidationError{Field: "rank", Value: rank, Message: "unknown rank"}
		}
		if catalog == nil {
			return &errors.ValidationError{Field: "catalog", Message: "cannot be nil"}
		}
		c.references[rank] = Reference{Catalog: catalog, Synonyms: synonyms}
		return nil
	}
}

// WithMinConfidence sets the classifier confidence below which reads are dropped.
func WithMinConfidence(v float64) Option {
	return func(c *config) error {
		c.minConfidence = v
		return nil
	}
}

// WithPrefix sets the marker prepended to reconciled names.
func WithPrefix(prefix string) Option {
	return func(c *config) error {
		c.prefix = prefix
		return nil
	}
}

// WithStrategy sets the collision strategy used during reconciliation.
func WithStrategy(s reconcile.Strategy) Option {
	return func(c *config) error {
		c.strategy = s
		return nil
	}
}

// WithWorkers bounds how many samples are aggregated concurrently.
func WithWorkers(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return &errors.ValidationError{Field: "workers", Value: n, Message: "must be at least 1"}
		}
		c.workers = n
		return nil
	}
}

// WithOutputDir writes the result tables to dir. Without it Run only
// returns results.
func WithOutputDir(dir string) Option {
	return func(c *config) error {
		c.outputDir = dir
		return nil
	}
}

// WithMetrics records run metrics in rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(c *config) error {
		c.recorder = rec
		return nil
	}
}

// WithMetricsFile writes the run metrics to path when Run finishes.
func WithMetricsFile(path string) Option {
	return func(c *config) error {
		c.metricsFile = path
		return nil
	}
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "cannot be nil"}
		}
		c.logger = logger
		return nil
	}
}
