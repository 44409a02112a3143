// Package merge provides the merge command.
package merge

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/panmap/cmd/application"
	"github.com/agentstation/panmap/internal/tabular"
	"github.com/agentstation/panmap/pkg/merge"
	"github.com/agentstation/panmap/pkg/taxa"
)

// NewCommand creates the merge command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		rankName   string
		out        string
		readCounts bool
	)

	cmd := &cobra.Command{
		Use:     "merge <table>...",
		GroupID: "core",
		Short:   "Combine abundance tables across samples",
		Long: `Merge combines per-sample or already-combined abundance tables into one
table with a column per sample. Taxa missing from a sample are zero;
a sample appearing in more than one input is summed.

With --read-counts the inputs are total_reads tables and counts are
added per sample.`,
		Example: `  panmap merge --rank genus -O combined.tsv profiles/*_genus.tsv
  panmap merge --read-counts run1/total_reads.tsv run2/total_reads.tsv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			write := func(w io.Writer) error {
				if readCounts {
					return mergeReadCounts(w, args)
				}
				rank, err := taxa.ParseRank(rankName)
				if err != nil {
					return err
				}
				return mergeTables(w, rank, args)
			}

			if out == "" || out == "-" {
				return write(cmd.OutOrStdout())
			}
			if err := tabular.WriteFile(out, write); err != nil {
				return err
			}
			app.Logger().Info().Str("path", out).Int("inputs", len(args)).Msg("Merged tables")
			return nil
		},
	}

	cmd.Flags().StringVar(&rankName, "rank", "species", "rank of the input tables, used for the header")
	cmd.Flags().StringVarP(&out, "out", "O", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&readCounts, "read-counts", false, "inputs are read count tables")
	return cmd
}

func mergeTables(w io.Writer, rank taxa.Rank, paths []string) error {
	tables := make([]taxa.Table, 0, len(paths))
	for _, path := range paths {
		t, err := tabular.ReadTableFile(path)
		if err != nil {
			return err
		}
		tables = append(tables, t)
	}
	return tabular.WriteTable(w, rank.Title(), merge.Tables(tables...))
}

func mergeReadCounts(w io.Writer, paths []string) error {
	counts := make([]taxa.ReadCounts, 0, len(paths))
	for _, path := range paths {
		rc, err := tabular.ReadReadCountsFile(path)
		if err != nil {
			return err
		}
		counts = append(counts, rc)
	}
	return tabular.WriteReadCounts(w, merge.ReadCounts(counts...))
}
