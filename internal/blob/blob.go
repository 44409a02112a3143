// Package blob selects and opens the blob store that fetched read files
// are kept in.
package blob

import (
	"context"

	"github.com/agentstation/panmap/internal/blob/core"
	"github.com/agentstation/panmap/internal/blob/fs"
	"github.com/agentstation/panmap/internal/blob/memory"
	"github.com/agentstation/panmap/internal/blob/s3"
	"github.com/agentstation/panmap/pkg/errors"
)

// Re-exported core types so callers need a single import.
type (
	Store      = core.Store
	Info       = core.Info
	PutOptions = core.PutOptions
	Driver     = core.Driver
)

// Drivers.
const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// Config selects a driver and carries its settings.
type Config struct {
	Driver Driver    `mapstructure:"driver" yaml:"driver"`
	Root   string    `mapstructure:"root" yaml:"root"`
	S3     s3.Config `mapstructure:"s3" yaml:"s3"`
}

// Open returns the store described by cfg. An empty driver means fs.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFilesystem, "":
		return fs.New(cfg.Root)
	case DriverS3:
		return s3.New(ctx, cfg.S3)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, &errors.ValidationError{
			Field:   "blob.driver",
			Value:   cfg.Driver,
			Message: "must be one of fs, s3, memory",
		}
	}
}
