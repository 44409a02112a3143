package retrieval

import (
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/panmap/internal/metrics"
	"github.com/agentstation/panmap/internal/transport"
	"github.com/agentstation/panmap/pkg/constants"
	"github.com/agentstation/panmap/pkg/errors"
	"github.com/agentstation/panmap/pkg/logging"
)

type options struct {
	endpoint   string
	attempts   int
	backoff    time.Duration
	maxBackoff time.Duration
	scheme     string
	client     *transport.Client
	recorder   *metrics.Recorder
	force      bool
	tempDir    string
	logger     *zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		endpoint:   constants.ENAFileReportURL,
		attempts:   constants.MaxDownloadAttempts,
		backoff:    constants.RetryBackoff,
		maxBackoff: constants.MaxRetryBackoff,
		scheme:     "https",
		logger:     logging.Default(),
	}
}

// Option configures a Fetcher.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithEndpoint sets the file-report endpoint used to locate read files.
func WithEndpoint(endpoint string) Option {
	return func(o *options) error {
		u, err := url.Parse(endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &errors.ValidationError{
				Field:   "endpoint",
				Value:   endpoint,
				Message: "must be an absolute URL",
			}
		}
		o.endpoint = endpoint
		return nil
	}
}

// WithAttempts sets how many times each file is tried before giving up.
func WithAttempts(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return &errors.ValidationError{
				Field:   "attempts",
				Value:   n,
				Message: "must be at least 1",
			}
		}
		o.attempts = n
		return nil
	}
}

// WithBackoff sets the initial wait between attempts and its cap. The wait
// doubles after every failed attempt.
func WithBackoff(base, max time.Duration) Option {
	return func(o *options) error {
		if base < 0 || max < base {
			return &errors.ValidationError{
				Field:   "backoff",
				Value:   [2]time.Duration{base, max},
				Message: "must satisfy 0 <= base <= max",
			}
		}
		o.backoff = base
		o.maxBackoff = max
		return nil
	}
}

// WithLinkScheme sets the scheme used for file links reported without one.
func WithLinkScheme(scheme string) Option {
	return func(o *options) error {
		if scheme == "" {
			return &errors.ValidationError{Field: "scheme", Message: "cannot be empty"}
		}
		o.scheme = scheme
		return nil
	}
}

// WithClient sets the HTTP client. The Fetcher does not close a client it
// did not create.
func WithClient(client *transport.Client) Option {
	return func(o *options) error {
		o.client = client
		return nil
	}
}

// WithRecorder records download metrics.
func WithRecorder(r *metrics.Recorder) Option {
	return func(o *options) error {
		o.recorder = r
		return nil
	}
}

// WithForce downloads files even when the store already holds them.
func WithForce(force bool) Option {
	return func(o *options) error {
		o.force = force
		return nil
	}
}

// WithTempDir sets where downloads are staged before they are stored.
func WithTempDir(dir string) Option {
	return func(o *options) error {
		o.tempDir = dir
		return nil
	}
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "cannot be nil"}
		}
		o.logger = logger
		return nil
	}
}
