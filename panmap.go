// Package panmap turns per-sample taxonomic read classifications into
// relative-abundance tables and reconciles their taxon names against a
// reference catalog of metabolic reconstructions.
//
// A Pipeline runs the whole flow for a set of classifier files:
//
//   - aggregate every file into per-sample profiles at each rank, one pass
//     per file, a bounded number of files at a time
//   - merge the profiles into one combined table per rank
//   - reconcile each combined table against its rank's reference
//   - write abundances_<rank>.tsv, reconciled_<rank>.tsv,
//     absent_present_<rank>.tsv and total_reads.tsv
//
// Example usage:
//
//	catalog, err := reference.LoadCatalogFile(ctx, "agora2.tsv", "Species")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	synonyms, err := reference.LoadSynonymsFile(ctx, "species_synonyms.tsv", reference.DefaultSynonymColumns())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	p, err := panmap.New(
//	    panmap.WithReference(taxa.Species, catalog, synonyms),
//	    panmap.WithOutputDir("out"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := p.Run(ctx, files)
package panmap

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/panmap/internal/tabular"
	"github.com/agentstation/panmap/pkg/aggregate"
	"github.com/agentstation/panmap/pkg/errors"
	"github.com/agentstation/panmap/pkg/logging"
	"github.com/agentstation/panmap/pkg/merge"
	"github.com/agentstation/panmap/pkg/reconcile"
	"github.com/agentstation/panmap/pkg/taxa"
)

// Pipeline stages, as recorded in metrics.
const (
	StageAggregate = "aggregate"
	StageReconcile = "reconcile"
	StageWrite     = "write"
)

// SampleResult is the aggregation of one classifier file.
type SampleResult struct {
	Sample string
	Path   string
	Reader tabular.ClassifierStats
	Ranks  map[taxa.Rank]aggregate.Result
}

// RankResult holds the combined and reconciled tables of one rank.
type RankResult struct {
	Rank       taxa.Rank
	Abundances taxa.Table
	// Reconciled is nil when no reference was configured for the rank.
	Reconciled *reconcile.Result
}

// Result is the outcome of a pipeline run.
type Result struct {
	RunID      string
	Samples    []SampleResult
	Ranks      []RankResult
	ReadCounts taxa.ReadCounts
	// Outputs lists the files written, in write order.
	Outputs   []string
	StartTime time.Time
	Duration  time.Duration
}

// Rank returns the result for rank.
func (r *Result) Rank(rank taxa.Rank) (RankResult, bool) {
	for _, rr := range r.Ranks {
		if rr.Rank == rank {
			return rr, true
		}
	}
	return RankResult{}, false
}

// Pipeline aggregates, merges and reconciles classifier output.
type Pipeline struct {
	hooks
	cfg        *config
	aggregator *aggregate.Aggregator
	engines    map[taxa.Rank]*reconcile.Engine
}

// New creates a Pipeline.
func New(opts ...Option) (*Pipeline, error) {
	cfg, err := defaultConfig().apply(opts...)
	if err != nil {
		return nil, err
	}

	agg, err := aggregate.New(
		aggregate.WithMinConfidence(cfg.minConfidence),
		aggregate.WithLogger(cfg.logger),
	)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:        cfg,
		aggregator: agg,
		engines:    make(map[taxa.Rank]*reconcile.Engine),
	}
	for rank, ref := range cfg.references {
		engine, err := reconcile.New(ref.Catalog, ref.Synonyms,
			reconcile.WithPrefix(cfg.prefix),
			reconcile.WithStrategy(cfg.strategy),
			reconcile.WithSpacedQueries(rank == taxa.Species),
			reconcile.WithLogger(cfg.logger),
		)
		if err != nil {
			return nil, errors.WrapResource("configure", "reconciler", rank.String(), err)
		}
		p.engines[rank] = engine
	}
	return p, nil
}

// Ranks returns the ranks the pipeline processes.
func (p *Pipeline) Ranks() []taxa.Rank {
	return slices.Clone(p.cfg.ranks)
}

// Run processes paths, one classifier file per sample.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if logging.FromContext(ctx) == logging.Default() {
		ctx = logging.WithLogger(ctx, p.cfg.logger)
	}
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx)

	result := &Result{RunID: runID, StartTime: time.Now()}
	logger.Info().Int("files", len(paths)).Msg("Starting run")

	start := time.Now()
	samples, err := p.Aggregate(ctx, paths)
	if err != nil {
		return nil, err
	}
	p.cfg.recorder.ObserveStage(StageAggregate, time.Since(start))
	result.Samples = samples

	start = time.Now()
	for _, rank := range p.cfg.ranks {
		rr, err := p.reconcileRank(ctx, rank, samples)
		if err != nil {
			return nil, err
		}
		result.Ranks = append(result.Ranks, rr)
	}
	p.cfg.recorder.ObserveStage(StageReconcile, time.Since(start))

	if slices.Contains(p.cfg.ranks, taxa.Species) {
		result.ReadCounts = readCounts(samples, taxa.Species)
	}

	if p.cfg.outputDir != "" {
		start = time.Now()
		outputs, err := writeOutputs(p.cfg.outputDir, result)
		result.Outputs = outputs
		if err != nil {
			return nil, err
		}
		p.cfg.recorder.ObserveStage(StageWrite, time.Since(start))
	}

	result.Duration = time.Since(result.StartTime)
	if err := p.cfg.recorder.WriteTextfile(p.cfg.metricsFile); err != nil {
		logger.Warn().Err(err).Str("path", p.cfg.metricsFile).Msg("Failed to write metrics")
	}

	logger.Info().
		Int("samples", len(samples)).
		Int("outputs", len(result.Outputs)).
		Dur("duration", result.Duration).
		Msg("Run complete")
	return result, nil
}

// Aggregate builds the profiles of every file at every configured rank.
// Results are returned in input order.
func (p *Pipeline) Aggregate(ctx context.Context, paths []string) ([]SampleResult, error) {
	results := make([]SampleResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.workers)
	for i, path := range paths {
		g.Go(func() error {
			res, err := p.aggregateFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = res
			p.sampleAggregated(res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) aggregateFile(ctx context.Context, path string) (SampleResult, error) {
	sample := tabular.SampleID(path)
	ctx = logging.WithSample(ctx, sample)

	counters := make(map[taxa.Rank]*aggregate.Counter, len(p.cfg.ranks))
	for _, rank := range p.cfg.ranks {
		counters[rank] = p.aggregator.Counter(sample, rank)
	}

	stats, err := tabular.ReadClassificationsFile(ctx, path, func(r taxa.Record) error {
		for _, c := range counters {
			c.Add(r)
		}
		return nil
	})
	if err != nil {
		return SampleResult{}, errors.WrapResource("aggregate", "sample", sample, err)
	}

	res := SampleResult{
		Sample: sample,
		Path:   path,
		Reader: stats,
		Ranks:  make(map[taxa.Rank]aggregate.Result, len(counters)),
	}
	for rank, c := range counters {
		ar := c.Result()
		res.Ranks[rank] = ar
		p.cfg.recorder.ObserveAggregation(rank, ar.Stats)
	}

	logging.FromContext(ctx).Debug().
		Int64("lines", stats.Lines).
		Int64("malformed_lines", stats.Malformed).
		Msg("Read classifier output")
	return res, nil
}

func (p *Pipeline) reconcileRank(ctx context.Context, rank taxa.Rank, samples []SampleResult) (RankResult, error) {
	profiles := make([]taxa.Profile, 0, len(samples))
	for _, s := range samples {
		profiles = append(profiles, s.Ranks[rank].Profile)
	}
	rr := RankResult{Rank: rank, Abundances: merge.Profiles(profiles...)}

	engine, ok := p.engines[rank]
	if !ok {
		logging.FromContext(ctx).Info().
			Str("rank", rank.String()).
			Msg("No reference configured, skipping reconciliation")
		return rr, nil
	}

	res, err := engine.Reconcile(ctx, rank, rr.Abundances)
	if err != nil {
		return RankResult{}, err
	}
	rr.Reconciled = res
	p.cfg.recorder.ObserveReconciliation(res)
	p.rankReconciled(res)
	return rr, nil
}

func readCounts(samples []SampleResult, rank taxa.Rank) taxa.ReadCounts {
	counts := make([]taxa.ReadCounts, 0, len(samples))
	for _, s := range samples {
		counts = append(counts, taxa.ReadCounts{s.Sample: s.Ranks[rank].Total})
	}
	return merge.ReadCounts(counts...)
}

// Logger returns the pipeline's fallback logger.
func (p *Pipeline) Logger() *zerolog.Logger {
	return p.cfg.logger
}
