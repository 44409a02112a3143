// Package application provides the application interface for panmap commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            p, err := app.Pipeline(cmd.Context())
//	            if err != nil {
//	                return err
//	            }
//	            result, err := p.Run(cmd.Context(), args)
//	            // ... render result
//	        },
//	    }
//	}
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/panmap"
	"github.com/agentstation/panmap/internal/metrics"
	"github.com/agentstation/panmap/internal/retrieval"
	"github.com/agentstation/panmap/pkg/reconcile"
	"github.com/agentstation/panmap/pkg/taxa"
)

// Application provides the application interface that commands need.
// The App struct from cmd/panmap/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Pipeline returns a pipeline configured from the application settings.
	// opts are applied after the configured options and override them.
	Pipeline(ctx context.Context, opts ...panmap.Option) (*panmap.Pipeline, error)

	// Engine returns a reconciliation engine for rank. It fails when no
	// reference catalog is configured.
	Engine(ctx context.Context, rank taxa.Rank) (*reconcile.Engine, error)

	// Fetcher returns a read fetcher backed by the configured blob store.
	// The caller must Close it.
	Fetcher(ctx context.Context, opts ...retrieval.Option) (*retrieval.Fetcher, error)

	// Metrics returns the run's metrics recorder.
	Metrics() *metrics.Recorder

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml, tsv).
	OutputFormat() string

	// OutputDir returns the directory result tables are written to.
	OutputDir() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
