// Package table converts panmap results into rows for terminal output.
package table

import (
	"strconv"

	"github.com/agentstation/panmap"
	"github.com/agentstation/panmap/internal/retrieval"
	"github.com/agentstation/panmap/pkg/reconcile"
	"github.com/agentstation/panmap/pkg/taxa"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

func numeric(n int) []Align {
	align := make([]Align, n+1)
	align[0] = AlignLeft
	for i := 1; i <= n; i++ {
		align[i] = AlignRight
	}
	return align
}

// SamplesToTableData summarizes aggregated samples, one row per sample and rank.
func SamplesToTableData(samples []panmap.SampleResult, ranks []taxa.Rank) Data {
	headers := []string{"Sample", "Rank", "Taxa", "Accepted", "Ambiguous", "Low Confidence", "Malformed"}
	rows := make([][]string, 0, len(samples)*len(ranks))
	for _, s := range samples {
		for _, rank := range ranks {
			res, ok := s.Ranks[rank]
			if !ok {
				continue
			}
			rows = append(rows, []string{
				s.Sample,
				rank.String(),
				strconv.Itoa(res.Profile.Len()),
				FormatCount(res.Stats.Accepted),
				FormatCount(res.Stats.Ambiguous),
				FormatCount(res.Stats.LowConfidence),
				FormatCount(res.Stats.Malformed),
			})
		}
	}
	align := append([]Align{AlignLeft}, numeric(len(headers)-2)...)
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// ReconciliationsToTableData summarizes reconciled ranks.
func ReconciliationsToTableData(results ...*reconcile.Result) Data {
	headers := []string{"Rank", "Taxa", "Present", "Renamed", "Absent", "Rows", "Collisions"}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		rows = append(rows, []string{
			r.Rank.String(),
			strconv.Itoa(r.Stats.Taxa),
			strconv.Itoa(r.Stats.Present),
			strconv.Itoa(r.Stats.Renamed),
			strconv.Itoa(r.Stats.Absent),
			strconv.Itoa(r.Stats.Rows),
			strconv.Itoa(r.Stats.Collisions),
		})
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: numeric(len(headers) - 1)}
}

// RunToTableData summarizes every rank of a pipeline run, including ranks
// that were only aggregated.
func RunToTableData(result *panmap.Result) Data {
	var reconciled []*reconcile.Result
	for _, rr := range result.Ranks {
		if rr.Reconciled != nil {
			reconciled = append(reconciled, rr.Reconciled)
			continue
		}
		reconciled = append(reconciled, &reconcile.Result{
			Rank:  rr.Rank,
			Stats: reconcile.Stats{Taxa: rr.Abundances.Len(), Absent: rr.Abundances.Len()},
		})
	}
	return ReconciliationsToTableData(reconciled...)
}

// AuditToTableData lists the audit rows of a reconciliation.
func AuditToTableData(r *reconcile.Result) Data {
	data := Data{Headers: reconcile.AuditHeader(r.Rank)}
	data.Rows = r.AuditRecords()
	return data
}

// PairsToTableData lists fetched read pairs.
func PairsToTableData(pairs []retrieval.Pair) Data {
	headers := []string{"Accession", "Forward", "Reverse", "Size"}
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{
			p.Accession,
			p.Forward.Key,
			p.Reverse.Key,
			FormatBytes(p.Forward.Size + p.Reverse.Size),
		})
	}
	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight},
	}
}

// FormatCount formats a count with thousands separators.
func FormatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// FormatBytes formats a byte count with a binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(n)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
