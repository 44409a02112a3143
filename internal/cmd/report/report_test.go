package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/panmap"
	"github.com/agentstation/panmap/pkg/aggregate"
	"github.com/agentstation/panmap/pkg/reconcile"
	"github.com/agentstation/panmap/pkg/reference"
	"github.com/agentstation/panmap/pkg/taxa"
)

func genusResult(t *testing.T) *reconcile.Result {
	t.Helper()
	b := taxa.NewBuilder()
	b.Add("Escherichia", "A", 0.5)
	b.Add("Shigella", "A", 0.25)
	b.Add("Oddity", "A", 0.25)

	res, err := reconcile.Reconcile(t.Context(), taxa.Genus, b.Table(),
		reference.NewCatalog("Escherichia"),
		reference.NewSynonyms(reference.Synonym{Query: "Shigella", Canonical: "Escherichia"}),
	)
	require.NoError(t, err)
	return res
}

func TestWrite(t *testing.T) {
	res := genusResult(t)
	species := taxa.NewBuilder()
	species.Add("Escherichia coli", "A", 1)

	result := &panmap.Result{
		RunID:     "run-1",
		StartTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Samples: []panmap.SampleResult{{
			Sample: "A",
			Ranks: map[taxa.Rank]aggregate.Result{
				taxa.Genus: {Rank: taxa.Genus, Stats: aggregate.Stats{Accepted: 4}},
			},
		}},
		Ranks: []panmap.RankResult{
			{Rank: taxa.Species, Abundances: species.Table()},
			{Rank: taxa.Genus, Reconciled: res},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, result))
	out := buf.String()

	assert.Contains(t, out, "# panmap run report")
	assert.Contains(t, out, "`run-1`")
	assert.Contains(t, out, "2026-01-02T03:04:05Z")
	assert.Contains(t, out, "## Species")
	assert.Contains(t, out, "No reference was configured")
	assert.Contains(t, out, "## Genus")
	assert.Contains(t, out, "Renamed: 1")
	assert.Contains(t, out, "`pan_Escherichia` is fed by 2 taxa.")
	assert.Contains(t, out, "QIIME2 Genus name")
	assert.Contains(t, out, "Oddity")
	assert.Contains(t, out, "AA_absent")
}

func TestWriteReconciliationNothingFound(t *testing.T) {
	b := taxa.NewBuilder()
	b.Add("Oddity", "A", 1)
	res, err := reconcile.Reconcile(t.Context(), taxa.Genus, b.Table(), reference.NewCatalog("Escherichia"), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteReconciliation(&buf, res))
	assert.Contains(t, buf.String(), "# Genus reconciliation")
	assert.Contains(t, buf.String(), "No genus found in the reference catalog.")
}
