package app

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agentstation/panmap/internal/cmd/output"
	"github.com/agentstation/panmap/pkg/errors"
)

// Execute runs the panmap CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	// An explicit config file must be read before flags are bound, so that
	// flags still override it.
	if file := configFileFromArgs(args); file != "" && file != a.config.ConfigFile {
		config, err := loadConfig(file)
		if err != nil {
			return err
		}
		a.config = config
	}

	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// ContextWithSignals creates a context that is cancelled when the application
// receives an interrupt or termination signal.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "panmap",
		Short:   "Taxonomic abundance aggregation and reference reconciliation",
		Version: a.version,
		Long: `panmap turns per-sample read classifications into relative abundance
tables at species and genus rank, merges them across samples, and
reconciles taxon names against a reference catalog of metabolic
reconstructions and a synonym table.

Every taxon gets an audit decision: present in the catalog, renamed
through the synonym table, or absent.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "data",
		Title: "Data Commands:",
	})

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.config.ConfigFile, "config", a.config.ConfigFile, "config file (default is $HOME/.panmap.yaml)")
	flags.BoolVarP(&a.config.Verbose, "verbose", "v", a.config.Verbose, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.config.Quiet, "quiet", "q", a.config.Quiet, "minimal output (shortcut for --log-level=warn)")
	flags.BoolVar(&a.config.NoColor, "no-color", a.config.NoColor, "disable colored output")
	flags.StringVarP(&a.config.Format, "format", "o", a.config.Format, "output format: table, json, yaml, tsv")
	flags.StringVar(&a.config.LogLevel, "log-level", a.config.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")

	// Pipeline flags, defaulting to the loaded configuration
	flags.StringVar(&a.config.Catalog, "catalog", a.config.Catalog, "reference catalog table (TSV or CSV)")
	flags.StringVar(&a.config.SpeciesColumn, "species-column", a.config.SpeciesColumn, "catalog column holding species names")
	flags.StringVar(&a.config.GenusColumn, "genus-column", a.config.GenusColumn, "catalog column holding genus names")
	flags.StringVar(&a.config.SpeciesSynonyms, "species-synonyms", a.config.SpeciesSynonyms, "species synonym table")
	flags.StringVar(&a.config.GenusSynonyms, "genus-synonyms", a.config.GenusSynonyms, "genus synonym table")
	flags.StringVar(&a.config.Prefix, "prefix", a.config.Prefix, "marker prepended to reconciled names")
	flags.StringVar(&a.config.Strategy, "strategy", a.config.Strategy, "collision strategy: sum, strict")
	flags.Float64Var(&a.config.MinConfidence, "min-confidence", a.config.MinConfidence, "drop classifications below this confidence")
	flags.IntVarP(&a.config.Workers, "workers", "j", a.config.Workers, "samples aggregated concurrently")
	flags.StringVarP(&a.config.OutputDir, "output-dir", "d", a.config.OutputDir, "directory for result tables")
	flags.StringVar(&a.config.MetricsFile, "metrics-file", a.config.MetricsFile, "write run metrics to this Prometheus textfile")

	rootCmd.SetVersionTemplate("panmap {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// These flags are defined as persistent flags in createRootCommand, so errors indicate programming errors
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")

	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)

	if _, err := output.ParseFormat(a.config.Format); err != nil {
		return err
	}
	if a.config.Workers < 1 {
		return &errors.ValidationError{Field: "workers", Value: a.config.Workers, Message: "must be at least 1"}
	}

	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// configFileFromArgs returns the value of --config in args, if present.
func configFileFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			return ""
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
