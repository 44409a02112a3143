// Package report renders pipeline results as Markdown.
package report

import (
	"fmt"
	"io"
	"time"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/panmap"
	"github.com/agentstation/panmap/internal/cmd/table"
	"github.com/agentstation/panmap/pkg/reconcile"
	"github.com/agentstation/panmap/pkg/taxa"
)

// Write renders result as a Markdown report: a run summary, per-sample
// aggregation counts and, for every reconciled rank, its decisions and audit.
func Write(w io.Writer, result *panmap.Result) error {
	m := md.NewMarkdown(w)

	m.H1("panmap run report")
	m.BulletList(
		"Run: "+md.Code(result.RunID),
		fmt.Sprintf("Samples: %d", len(result.Samples)),
		"Started: "+result.StartTime.UTC().Format(time.RFC3339),
		"Duration: "+result.Duration.Round(time.Millisecond).String(),
	)

	if len(result.Samples) > 0 {
		ranks := make([]taxa.Rank, 0, len(result.Ranks))
		for _, rr := range result.Ranks {
			ranks = append(ranks, rr.Rank)
		}
		samples := table.SamplesToTableData(result.Samples, ranks)
		m.H2("Samples")
		m.Table(md.TableSet{Header: samples.Headers, Rows: samples.Rows})
	}

	for _, rr := range result.Ranks {
		m.H2(rr.Rank.Title())
		if rr.Reconciled == nil {
			m.PlainTextf("%d taxa aggregated. No reference was configured for this rank.", rr.Abundances.Len())
			m.LF()
			continue
		}
		writeReconciliation(m, rr.Reconciled)
	}

	return m.Build()
}

// WriteReconciliation renders a single reconciliation.
func WriteReconciliation(w io.Writer, res *reconcile.Result) error {
	m := md.NewMarkdown(w)
	m.H1(res.Rank.Title() + " reconciliation")
	writeReconciliation(m, res)
	return m.Build()
}

func writeReconciliation(m *md.Markdown, res *reconcile.Result) {
	m.BulletList(
		fmt.Sprintf("Taxa: %d", res.Stats.Taxa),
		fmt.Sprintf("Present: %d", res.Stats.Present),
		fmt.Sprintf("Renamed: %d", res.Stats.Renamed),
		fmt.Sprintf("Absent: %d", res.Stats.Absent),
		fmt.Sprintf("Reconciled rows: %d", res.Stats.Rows),
		fmt.Sprintf("Collisions: %d (strategy %s)", res.Stats.Collisions, md.Code(string(res.Metadata.Strategy))),
	)
	if !res.Found {
		m.Blockquote(fmt.Sprintf("No %s found in the reference catalog.", res.Rank))
	}
	for _, c := range res.Collisions {
		m.PlainTextf("%s is fed by %d taxa.", md.Code(c.Key), len(c.Taxa))
		m.LF()
	}

	audit := table.AuditToTableData(res)
	m.H3("Audit")
	m.Table(md.TableSet{Header: audit.Headers, Rows: audit.Rows})
}
