package reconcile

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/panmap/pkg/constants"
	"github.com/agentstation/panmap/pkg/errors"
	"github.com/agentstation/panmap/pkg/logging"
)

type options struct {
	prefix   string
	strategy Strategy
	spaced   bool
	logger   *zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		prefix:   constants.DefaultPanPrefix,
		strategy: NewSumStrategy(),
		logger:   logging.Default(),
	}
}

// Option configures an Engine.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithPrefix sets the marker prepended to every reconciled name.
func WithPrefix(prefix string) Option {
	return func(o *options) error {
		if strings.ContainsAny(prefix, " \t\r\n") {
			return &errors.ValidationError{
				Field:   "prefix",
				Value:   prefix,
				Message: "cannot contain whitespace",
			}
		}
		o.prefix = prefix
		return nil
	}
}

// WithStrategy sets the collision strategy.
func WithStrategy(strategy Strategy) Option {
	return func(o *options) error {
		if strategy == nil {
			return &errors.ValidationError{
				Field:   "strategy",
				Message: "cannot be nil",
			}
		}
		o.strategy = strategy
		return nil
	}
}

// WithSpacedQueries makes the engine read underscores in input taxa as
// spaces before matching, as classifiers write "Escherichia_coli" for the
// species "Escherichia coli".
func WithSpacedQueries(enabled bool) Option {
	return func(o *options) error {
		o.spaced = enabled
		return nil
	}
}

// WithLogger sets the logger used when the context carries none.
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
