// Package run provides the run command.
package run

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/panmap/cmd/application"
	"github.com/agentstation/panmap/internal/cmd/output"
	"github.com/agentstation/panmap/internal/cmd/report"
	"github.com/agentstation/panmap/internal/cmd/table"
	"github.com/agentstation/panmap/internal/tabular"
)

// NewCommand creates the run command.
func NewCommand(app application.Application) *cobra.Command {
	var reportPath string

	cmd := &cobra.Command{
		Use:     "run <classifier-output>...",
		GroupID: "core",
		Short:   "Aggregate, merge and reconcile in one pass",
		Long: `Run aggregates every classifier output file at species and genus rank,
merges the samples into one table per rank, reconciles each table
against the reference catalog and writes:

  abundances_<rank>.tsv       combined relative abundances
  reconciled_<rank>.tsv       prefixed canonical names (when any were found)
  absent_present_<rank>.tsv   the audit of every taxon
  total_reads.tsv             accepted species-level reads per sample

Ranks without a configured catalog are aggregated and merged only.`,
		Example: `  panmap run --catalog agora2.tsv \
    --species-synonyms species_syn.tsv --genus-synonyms genus_syn.tsv \
    -d results samples/*.spingo.tsv.gz`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := app.Pipeline(ctx)
			if err != nil {
				return err
			}

			result, err := p.Run(ctx, args)
			if err != nil {
				return err
			}

			if reportPath != "" {
				if err := tabular.WriteFile(reportPath, func(w io.Writer) error {
					return report.Write(w, result)
				}); err != nil {
					return err
				}
			}

			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), table.RunToTableData(result))
		},
	}

	cmd.Flags().StringVar(&reportPath, "report", "", "also write a Markdown report to this file")
	return cmd
}
