// Package reconcile provides the reconcile command.
package reconcile

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/panmap"
	"github.com/agentstation/panmap/cmd/application"
	"github.com/agentstation/panmap/internal/cmd/output"
	"github.com/agentstation/panmap/internal/cmd/report"
	"github.com/agentstation/panmap/internal/cmd/table"
	"github.com/agentstation/panmap/internal/tabular"
	"github.com/agentstation/panmap/pkg/taxa"
)

// NewCommand creates the reconcile command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		rankName   string
		reportPath string
		showAudit  bool
	)

	cmd := &cobra.Command{
		Use:     "reconcile <combined-table>",
		GroupID: "core",
		Short:   "Match a combined table against the reference catalog",
		Long: `Reconcile classifies every taxon of a combined abundance table as present
in the reference catalog, renamed through the synonym table, or absent.
Present and renamed taxa are written under their prefixed canonical name
to reconciled_<rank>.tsv; taxa sharing a canonical name are summed (or
rejected with --strategy strict). The decision for every taxon is
written to absent_present_<rank>.tsv.`,
		Example: `  panmap reconcile --catalog agora2.tsv --genus-synonyms genus_syn.tsv --rank genus abundances_genus.tsv
  panmap reconcile --rank species --audit -o tsv abundances_species.tsv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rank, err := taxa.ParseRank(rankName)
			if err != nil {
				return err
			}

			engine, err := app.Engine(ctx, rank)
			if err != nil {
				return err
			}
			combined, err := tabular.ReadTableFile(args[0])
			if err != nil {
				return err
			}

			res, err := engine.Reconcile(ctx, rank, combined)
			if err != nil {
				return err
			}
			app.Metrics().ObserveReconciliation(res)

			paths, err := panmap.WriteReconciliation(app.OutputDir(), res)
			if err != nil {
				return err
			}
			for _, p := range paths {
				app.Logger().Debug().Str("path", p).Msg("Wrote output")
			}

			if reportPath != "" {
				if err := tabular.WriteFile(reportPath, func(w io.Writer) error {
					return report.WriteReconciliation(w, res)
				}); err != nil {
					return err
				}
			}

			data := table.ReconciliationsToTableData(res)
			if showAudit {
				data = table.AuditToTableData(res)
			}
			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), data)
		},
	}

	cmd.Flags().StringVar(&rankName, "rank", "species", "rank of the combined table: species, genus")
	cmd.Flags().StringVar(&reportPath, "report", "", "also write a Markdown report to this file")
	cmd.Flags().BoolVar(&showAudit, "audit", false, "print the audit instead of the summary")
	return cmd
}
