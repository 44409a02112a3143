package aggregate

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/agentstation/panmap/pkg/constants"
	"github.com/agentstation/panmap/pkg/errors"
	"github.com/agentstation/panmap/pkg/logging"
)

type options struct {
	minConfidence float64
	logger        *zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		minConfidence: constants.DefaultMinConfidence,
		logger:        logging.Default(),
	}
}

// Option configures an Aggregator.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithMinConfidence sets the confidence below which records are dropped.
// A record whose confidence equals the threshold is kept.
func WithMinConfidence(threshold float64) Option {
	return func(o *options) error {
		if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
			return &errors.ValidationError{
				Field:   "min_confidence",
				Value:   threshold,
				Message: "must be between 0 and 1",
			}
		}
		o.minConfidence = threshold
		return nil
	}
}

// WithLogger sets the logger used for skipped-record diagnostics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return &errors.ValidationError{
				Field:   "logger",
				Message: "cannot be nil",
			}
		}
		o.logger = logger
		return nil
	}
}
