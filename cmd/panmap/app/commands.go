package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/panmap/cmd/panmap/cmd/aggregate"
	"github.com/agentstation/panmap/cmd/panmap/cmd/fetch"
	"github.com/agentstation/panmap/cmd/panmap/cmd/merge"
	"github.com/agentstation/panmap/cmd/panmap/cmd/reconcile"
	"github.com/agentstation/panmap/cmd/panmap/cmd/run"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(a.NewRunCommand())
	rootCmd.AddCommand(a.NewAggregateCommand())
	rootCmd.AddCommand(a.NewMergeCommand())
	rootCmd.AddCommand(a.NewReconcileCommand())

	// Data commands
	rootCmd.AddCommand(a.NewFetchCommand())

	// Utility commands
	rootCmd.AddCommand(a.NewVersionCommand())
}

// NewRunCommand creates the run command with app dependencies.
func (a *App) NewRunCommand() *cobra.Command {
	return run.NewCommand(a)
}

// NewAggregateCommand creates the aggregate command with app dependencies.
func (a *App) NewAggregateCommand() *cobra.Command {
	return aggregate.NewCommand(a)
}

// NewMergeCommand creates the merge command with app dependencies.
func (a *App) NewMergeCommand() *cobra.Command {
	return merge.NewCommand(a)
}

// NewReconcileCommand creates the reconcile command with app dependencies.
func (a *App) NewReconcileCommand() *cobra.Command {
	return reconcile.NewCommand(a)
}

// NewFetchCommand creates the fetch command with app dependencies.
func (a *App) NewFetchCommand() *cobra.Command {
	return fetch.NewCommand(a)
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show version information for the panmap CLI.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(w, "panmap version %s\n", a.version); err != nil {
				return err
			}
			if !a.config.Verbose {
				return nil
			}
			_, err := fmt.Fprintf(w, "commit: %s\nbuilt: %s\nbuilt by: %s\ngo version: %s\nplatform: %s/%s\n",
				a.commit, a.date, a.builtBy, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return err
		},
	}
}
