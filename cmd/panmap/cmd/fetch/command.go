// Package fetch provides the fetch command.
package fetch

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/panmap/cmd/application"
	"github.com/agentstation/panmap/internal/cmd/output"
	"github.com/agentstation/panmap/internal/cmd/table"
	"github.com/agentstation/panmap/internal/retrieval"
	"github.com/agentstation/panmap/internal/tabular"
)

// NewCommand creates the fetch command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		force   bool
		tempDir string
	)

	cmd := &cobra.Command{
		Use:     "fetch <manifest>",
		GroupID: "data",
		Short:   "Download paired read files for a manifest of accessions",
		Long: `Fetch reads the accession column of a manifest (TSV, or CSV by
extension), locates each accession's two read files through the ENA
file report and stores them as <accession>_1.fastq.gz and
<accession>_2.fastq.gz in the configured blob store.

Each file is tried up to --attempts times with exponential backoff.
When a file cannot be fetched the command stops at that accession.
Files already in the store are skipped unless --force is given.

The blob store is set with PANMAP_BLOB_DRIVER (fs, s3, memory),
PANMAP_BLOB_ROOT and PANMAP_S3_* variables.`,
		Example: `  panmap fetch manifest.tsv
  PANMAP_BLOB_DRIVER=s3 PANMAP_S3_BUCKET=reads panmap fetch manifest.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			accessions, err := tabular.ReadManifestFile(args[0])
			if err != nil {
				return err
			}

			opts := []retrieval.Option{retrieval.WithForce(force)}
			if tempDir != "" {
				opts = append(opts, retrieval.WithTempDir(tempDir))
			}
			fetcher, err := app.Fetcher(ctx, opts...)
			if err != nil {
				return err
			}
			defer fetcher.Close()

			pairs, err := fetcher.FetchManifest(ctx, accessions)
			if len(pairs) > 0 {
				if renderErr := output.Render(cmd.OutOrStdout(), app.OutputFormat(), table.PairsToTableData(pairs)); renderErr != nil && err == nil {
					err = renderErr
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "download files even if already stored")
	cmd.Flags().StringVar(&tempDir, "temp-dir", "", "directory downloads are staged in (default system temp)")
	return cmd
}
