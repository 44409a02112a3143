// Package application provides test doubles for the command application
// interface.
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/panmap"
	"github.com/agentstation/panmap/internal/metrics"
	"github.com/agentstation/panmap/internal/retrieval"
	"github.com/agentstation/panmap/pkg/errors"
	"github.com/agentstation/panmap/pkg/reconcile"
	"github.com/agentstation/panmap/pkg/taxa"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    EngineFunc: func(ctx context.Context, rank taxa.Rank) (*reconcile.Engine, error) {
//	        return reconcile.New(reference.NewCatalog("Escherichia"), nil)
//	    },
//	    OutputDirFunc: func() string { return t.TempDir() },
//	}
//	cmd := reconcilecmd.NewCommand(mock)
type Mock struct {
	PipelineFunc     func(ctx context.Context, opts ...panmap.Option) (*panmap.Pipeline, error)
	EngineFunc       func(ctx context.Context, rank taxa.Rank) (*reconcile.Engine, error)
	FetcherFunc      func(ctx context.Context, opts ...retrieval.Option) (*retrieval.Fetcher, error)
	MetricsFunc      func() *metrics.Recorder
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	OutputDirFunc    func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Pipeline returns a pipeline using the mock function or a default pipeline
// logging nowhere.
func (m *Mock) Pipeline(ctx context.Context, opts ...panmap.Option) (*panmap.Pipeline, error) {
	if m.PipelineFunc != nil {
		return m.PipelineFunc(ctx, opts...)
	}
	return panmap.New(append([]panmap.Option{panmap.WithLogger(m.Logger())}, opts...)...)
}

// Engine returns an engine using the mock function or a not-found error.
func (m *Mock) Engine(ctx context.Context, rank taxa.Rank) (*reconcile.Engine, error) {
	if m.EngineFunc != nil {
		return m.EngineFunc(ctx, rank)
	}
	return nil, errors.NewNotFoundError("reference catalog", rank.String())
}

// Fetcher returns a fetcher using the mock function or a not-found error.
func (m *Mock) Fetcher(ctx context.Context, opts ...retrieval.Option) (*retrieval.Fetcher, error) {
	if m.FetcherFunc != nil {
		return m.FetcherFunc(ctx, opts...)
	}
	return nil, errors.NewNotFoundError("blob store", "mock")
}

// Metrics returns a recorder using the mock function or nil, which records nothing.
func (m *Mock) Metrics() *metrics.Recorder {
	if m.MetricsFunc != nil {
		return m.MetricsFunc()
	}
	return nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// OutputDir returns the output directory using the mock function or ".".
func (m *Mock) OutputDir() string {
	if m.OutputDirFunc != nil {
		return m.OutputDirFunc()
	}
	return "."
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builder using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}
