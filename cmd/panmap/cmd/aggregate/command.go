// Package aggregate provides the aggregate command.
package aggregate

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentstation/panmap"
	"github.com/agentstation/panmap/cmd/application"
	"github.com/agentstation/panmap/internal/cmd/output"
	"github.com/agentstation/panmap/internal/cmd/table"
	"github.com/agentstation/panmap/internal/tabular"
	"github.com/agentstation/panmap/pkg/taxa"
)

// ProfileFile returns the per-sample profile file name.
func ProfileFile(sample string, rank taxa.Rank) string {
	return fmt.Sprintf("%s_%s.tsv", sample, rank)
}

// NewCommand creates the aggregate command.
func NewCommand(app application.Application) *cobra.Command {
	var ranks []string

	cmd := &cobra.Command{
		Use:     "aggregate <classifier-output>...",
		GroupID: "core",
		Short:   "Build per-sample relative abundance profiles",
		Long: `Aggregate reads each classifier output file (optionally gzip-compressed)
and writes one relative abundance profile per sample and rank,
named <sample>_<rank>.tsv, to the output directory.

The sample id is the file name up to its first dot. Reads that are
ambiguous at a rank, malformed, or below the confidence threshold are
dropped before abundances are computed.`,
		Example: `  panmap aggregate -d profiles SRR1.spingo.tsv.gz SRR2.spingo.tsv.gz
  panmap aggregate --rank genus samples/*.tsv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := parseRanks(ranks)
			if err != nil {
				return err
			}

			p, err := app.Pipeline(cmd.Context(), panmap.WithRanks(rs...))
			if err != nil {
				return err
			}
			samples, err := p.Aggregate(cmd.Context(), args)
			if err != nil {
				return err
			}

			for _, s := range samples {
				for _, rank := range rs {
					res := s.Ranks[rank]
					path := filepath.Join(app.OutputDir(), ProfileFile(s.Sample, rank))
					if err := tabular.WriteFile(path, func(w io.Writer) error {
						return tabular.WriteTable(w, rank.Title(), res.Profile.Table())
					}); err != nil {
						return err
					}
					app.Logger().Debug().Str("path", path).Msg("Wrote profile")
				}
			}

			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), table.SamplesToTableData(samples, rs))
		},
	}

	cmd.Flags().StringSliceVar(&ranks, "rank", []string{"species", "genus"}, "ranks to aggregate")
	return cmd
}

func parseRanks(names []string) ([]taxa.Rank, error) {
	ranks := make([]taxa.Rank, 0, len(names))
	for _, n := range names {
		r, err := taxa.ParseRank(n)
		if err != nil {
			return nil, err
		}
		ranks = append(ranks, r)
	}
	return ranks, nil
}
