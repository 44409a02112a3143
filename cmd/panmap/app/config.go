package app

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/agentstation/panmap/internal/blob"
	"github.com/agentstation/panmap/internal/blob/s3"
	"github.com/agentstation/panmap/internal/config"
	"github.com/agentstation/panmap/pkg/constants"
	"github.com/agentstation/panmap/pkg/reconcile"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Reference data
	Catalog         string
	SpeciesColumn   string
	GenusColumn     string
	SpeciesSynonyms string
	GenusSynonyms   string
	QueryColumn     string
	CanonicalColumn string

	// Pipeline
	Prefix        string
	Strategy      string
	MinConfidence float64
	Workers       int
	OutputDir     string
	MetricsFile   string

	// Retrieval
	Blob       blob.Config
	Endpoint   string
	Attempts   int
	Backoff    time.Duration
	MaxBackoff time.Duration

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

func defaults() map[string]any {
	return map[string]any{
		"catalog_species_column":    "Species",
		"catalog_genus_column":      "Genus",
		"synonyms_query_column":     constants.DefaultQueryColumn,
		"synonyms_canonical_column": constants.DefaultCanonicalColumn,
		"prefix":                    constants.DefaultPanPrefix,
		"strategy":                  string(reconcile.StrategyTypeSum),
		"min_confidence":            constants.DefaultMinConfidence,
		"workers":                   constants.DefaultWorkers,
		"output_dir":                ".",
		"blob.driver":               string(blob.DriverFilesystem),
		"blob.root":                 "./reads",
		"retrieval.endpoint":        constants.ENAFileReportURL,
		"retrieval.attempts":        constants.MaxDownloadAttempts,
		"retrieval.backoff":         constants.RetryBackoff,
		"retrieval.max_backoff":     constants.MaxRetryBackoff,
	}
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables (PANMAP_*)
//  3. .env files
//  4. Config file (--config, or ~/.panmap.yaml / ./.panmap.yaml)
//  5. Defaults
func LoadConfig() (*Config, error) {
	return loadConfig(os.Getenv("PANMAP_CONFIG"))
}

func loadConfig(file string) (*Config, error) {
	// Load .env files first so they are visible to viper's env lookup
	loadEnvFiles()

	v := config.New(defaults())
	if err := config.ReadFile(v, file, ".panmap"); err != nil {
		return nil, err
	}

	cfg := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Catalog:         v.GetString("catalog"),
		SpeciesColumn:   v.GetString("catalog_species_column"),
		GenusColumn:     v.GetString("catalog_genus_column"),
		SpeciesSynonyms: v.GetString("synonyms_species"),
		GenusSynonyms:   v.GetString("synonyms_genus"),
		QueryColumn:     v.GetString("synonyms_query_column"),
		CanonicalColumn: v.GetString("synonyms_canonical_column"),

		Prefix:        v.GetString("prefix"),
		Strategy:      v.GetString("strategy"),
		MinConfidence: v.GetFloat64("min_confidence"),
		Workers:       v.GetInt("workers"),
		OutputDir:     v.GetString("output_dir"),
		MetricsFile:   v.GetString("metrics_file"),

		Blob: blob.Config{
			Driver: blob.Driver(v.GetString("blob.driver")),
			Root:   v.GetString("blob.root"),
			S3: s3.Config{
				Region:          v.GetString("s3.region"),
				Bucket:          v.GetString("s3.bucket"),
				Prefix:          v.GetString("s3.prefix"),
				Endpoint:        v.GetString("s3.endpoint"),
				AccessKeyID:     v.GetString("s3.access_key_id"),
				SecretAccessKey: v.GetString("s3.secret_access_key"),
				SessionToken:    v.GetString("s3.session_token"),
				PathStyle:       v.GetBool("s3.path_style"),
			},
		},
		Endpoint:   v.GetString("retrieval.endpoint"),
		Attempts:   v.GetInt("retrieval.attempts"),
		Backoff:    v.GetDuration("retrieval.backoff"),
		MaxBackoff: v.GetDuration("retrieval.max_backoff"),

		// Logging configuration keeps the unprefixed names shared with pkg/logging
		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}
	if cfg.Blob.S3.Region == "" {
		// PANMAP_AWS_REGION, then the SDK's own AWS_REGION
		cfg.Blob.S3.Region = config.GetString(v, "aws_region")
	}

	return cfg, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// Variables already set in the environment are not overridden, and
// .env.local is loaded first so it wins over .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
