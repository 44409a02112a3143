// Package app provides the application context and dependency management
// for the panmap CLI. It centralizes configuration, logging, reference data
// loading and the metrics recorder shared by every command.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/panmap"
	"github.com/agentstation/panmap/internal/blob"
	"github.com/agentstation/panmap/internal/metrics"
	"github.com/agentstation/panmap/internal/retrieval"
	"github.com/agentstation/panmap/pkg/errors"
	"github.com/agentstation/panmap/pkg/reconcile"
	"github.com/agentstation/panmap/pkg/reference"
	"github.com/agentstation/panmap/pkg/taxa"
)

// App represents the panmap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Lazily created, shared by every command of one invocation
	mu         sync.Mutex
	recorder   *metrics.Recorder
	references map[taxa.Rank]panmap.Reference
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version:    version,
		commit:     commit,
		date:       date,
		builtBy:    builtBy,
		references: make(map[taxa.Rank]panmap.Reference),
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// OutputDir returns the directory result tables are written to.
func (a *App) OutputDir() string {
	return a.config.OutputDir
}

// Metrics returns the recorder shared by every command of this invocation.
func (a *App) Metrics() *metrics.Recorder {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.recorder == nil {
		a.recorder = metrics.New()
	}
	return a.recorder
}

// Pipeline returns a pipeline configured from the application settings.
// Ranks with a configured catalog are reconciled; the others are only
// aggregated.
func (a *App) Pipeline(ctx context.Context, opts ...panmap.Option) (*panmap.Pipeline, error) {
	strategy, err := reconcile.ParseStrategy(a.config.Strategy)
	if err != nil {
		return nil, err
	}

	base := []panmap.Option{
		panmap.WithMinConfidence(a.config.MinConfidence),
		panmap.WithPrefix(a.config.Prefix),
		panmap.WithStrategy(strategy),
		panmap.WithWorkers(a.config.Workers),
		panmap.WithOutputDir(a.config.OutputDir),
		panmap.WithMetrics(a.Metrics()),
		panmap.WithLogger(a.logger),
	}
	for _, rank := range taxa.Ranks() {
		ref, ok, err := a.reference(ctx, rank)
		if err != nil {
			return nil, err
		}
		if ok {
			base = append(base, panmap.WithReference(rank, ref.Catalog, ref.Synonyms))
		}
	}

	return panmap.New(append(base, opts...)...)
}

// Engine returns a reconciliation engine for rank.
func (a *App) Engine(ctx context.Context, rank taxa.Rank) (*reconcile.Engine, error) {
	ref, ok, err := a.reference(ctx, rank)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewConfigError("reference", "no catalog configured (set --catalog or PANMAP_CATALOG)", nil)
	}
	strategy, err := reconcile.ParseStrategy(a.config.Strategy)
	if err != nil {
		return nil, err
	}
	return reconcile.New(ref.Catalog, ref.Synonyms,
		reconcile.WithPrefix(a.config.Prefix),
		reconcile.WithStrategy(strategy),
		reconcile.WithSpacedQueries(rank == taxa.Species),
		reconcile.WithLogger(a.logger),
	)
}

// Fetcher returns a read fetcher backed by the configured blob store.
func (a *App) Fetcher(ctx context.Context, opts ...retrieval.Option) (*retrieval.Fetcher, error) {
	store, err := blob.Open(ctx, a.config.Blob)
	if err != nil {
		return nil, err
	}

	base := []retrieval.Option{
		retrieval.WithAttempts(a.config.Attempts),
		retrieval.WithBackoff(a.config.Backoff, a.config.MaxBackoff),
		retrieval.WithRecorder(a.Metrics()),
		retrieval.WithLogger(a.logger),
	}
	if a.config.Endpoint != "" {
		base = append(base, retrieval.WithEndpoint(a.config.Endpoint))
	}
	return retrieval.New(store, append(base, opts...)...)
}

// reference loads the catalog and synonym table for rank once per
// invocation. It reports false when no catalog is configured.
func (a *App) reference(ctx context.Context, rank taxa.Rank) (panmap.Reference, bool, error) {
	if a.config.Catalog == "" {
		return panmap.Reference{}, false, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if ref, ok := a.references[rank]; ok {
		return ref, true, nil
	}

	column, synonymsPath := a.config.SpeciesColumn, a.config.SpeciesSynonyms
	if rank == taxa.Genus {
		column, synonymsPath = a.config.GenusColumn, a.config.GenusSynonyms
	}

	catalog, err := reference.LoadCatalogFile(ctx, a.config.Catalog, column)
	if err != nil {
		return panmap.Reference{}, false, err
	}

	synonyms := reference.NewSynonyms()
	if synonymsPath != "" {
		synonyms, err = reference.LoadSynonymsFile(ctx, synonymsPath, reference.SynonymColumns{
			Query:     a.config.QueryColumn,
			Canonical: a.config.CanonicalColumn,
		})
		if err != nil {
			return panmap.Reference{}, false, err
		}
	}

	a.logger.Debug().
		Str("rank", rank.String()).
		Int("catalog", catalog.Len()).
		Int("synonyms", synonyms.Len()).
		Msg("Loaded reference")

	ref := panmap.Reference{Catalog: catalog, Synonyms: synonyms}
	a.references[rank] = ref
	return ref, true, nil
}

// Shutdown writes the metrics textfile, if one is configured and any
// command recorded metrics.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	rec := a.recorder
	a.mu.Unlock()

	return rec.WriteTextfile(a.config.MetricsFile)
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
