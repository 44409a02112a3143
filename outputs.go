package panmap

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/agentstation/panmap/internal/tabular"
	"github.com/agentstation/panmap/pkg/reconcile"
	"github.com/agentstation/panmap/pkg/taxa"
)

// Output file names.
const (
	TotalReadsFile = "total_reads.tsv"
)

// AbundancesFile returns the combined table file name for rank.
func AbundancesFile(rank taxa.Rank) string {
	return fmt.Sprintf("abundances_%s.tsv", rank)
}

// ReconciledFile returns the reconciled table file name for rank.
func ReconciledFile(rank taxa.Rank) string {
	return fmt.Sprintf("reconciled_%s.tsv", rank)
}

// AuditFile returns the audit file name for rank.
func AuditFile(rank taxa.Rank) string {
	return fmt.Sprintf("absent_present_%s.tsv", rank)
}

// writeOutputs writes every table of result under dir. The reconciled table
// is skipped for a rank where no taxon was found.
func writeOutputs(dir string, result *Result) ([]string, error) {
	var written []string
	for _, rr := range result.Ranks {
		path := filepath.Join(dir, AbundancesFile(rr.Rank))
		if err := tabular.WriteFile(path, func(w io.Writer) error {
			return tabular.WriteTable(w, rr.Rank.Title(), rr.Abundances)
		}); err != nil {
			return written, err
		}
		written = append(written, path)

		if rr.Reconciled == nil {
			continue
		}
		paths, err := WriteReconciliation(dir, rr.Reconciled)
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}

	if result.ReadCounts != nil {
		path := filepath.Join(dir, TotalReadsFile)
		if err := tabular.WriteFile(path, func(w io.Writer) error {
			return tabular.WriteReadCounts(w, result.ReadCounts)
		}); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// WriteReconciliation writes the reconciled table and audit of res under
// dir and returns the paths written. The reconciled table is only written
// when a taxon was found.
func WriteReconciliation(dir string, res *reconcile.Result) ([]string, error) {
	var written []string
	corner := res.Rank.Title()

	if res.Found {
		path := filepath.Join(dir, ReconciledFile(res.Rank))
		if err := tabular.WriteFile(path, func(w io.Writer) error {
			return tabular.WriteTable(w, corner, res.Table)
		}); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	path := filepath.Join(dir, AuditFile(res.Rank))
	if err := tabular.WriteFile(path, func(w io.Writer) error {
		return tabular.WriteRecords(w, reconcile.AuditHeader(res.Rank), res.AuditRecords())
	}); err != nil {
		return written, err
	}
	return append(written, path), nil
}
