package merge_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/panmap/internal/tabular"
	"github.com/agentstation/panmap/pkg/merge"
	"github.com/agentstation/panmap/pkg/taxa"
)

func TestProfilesSeparateColumns(t *testing.T) {
	tbl := merge.Profiles(
		taxa.NewProfile("S1", map[string]float64{"X": 0.3, "Y": 0.7}),
		taxa.NewProfile("S2", map[string]float64{"X": 0.2, "Z": 0.8}),
	)

	assert.Equal(t, []string{"S1", "S2"}, tbl.Samples())
	want := []taxa.Row{
		{Taxon: "X", Values: []float64{0.3, 0.2}},
		{Taxon: "Y", Values: []float64{0.7, 0}},
		{Taxon: "Z", Values: []float64{0, 0.8}},
	}
	if diff := cmp.Diff(want, tbl.Rows()); diff != "" {
		t.Errorf("merged rows mismatch (-want +got):\n%s", diff)
	}
}

func TestProfilesDuplicateSampleSums(t *testing.T) {
	p := taxa.NewProfile("ERR1", map[string]float64{"X": 0.25, "Y": 0.75})
	tbl := merge.Profiles(p, p)

	assert.Equal(t, []string{"ERR1"}, tbl.Samples())
	assert.Equal(t, 0.5, tbl.Value("X", "ERR1"))
	assert.Equal(t, 1.5, tbl.Value("Y", "ERR1"))
}

func TestProfilesOrderIndependent(t *testing.T) {
	a := taxa.NewProfile("A", map[string]float64{"m": 0.1, "n": 0.9})
	b := taxa.NewProfile("B", map[string]float64{"n": 0.4, "o": 0.6})
	c := taxa.NewProfile("C", map[string]float64{"m": 1})

	first := merge.Profiles(a, b, c)
	second := merge.Profiles(c, a, b)

	assert.Equal(t, first.Samples(), second.Samples())
	if diff := cmp.Diff(first.Rows(), second.Rows()); diff != "" {
		t.Errorf("merge depends on input order (-first +second):\n%s", diff)
	}
}

func TestProfilesDuplicateSampleOrderIndependent(t *testing.T) {
	p1 := taxa.NewProfile("S1", map[string]float64{"m": 0.1})
	p2 := taxa.NewProfile("S1", map[string]float64{"m": 0.2})
	p3 := taxa.NewProfile("S1", map[string]float64{"m": 0.3})

	orders := [][]taxa.Profile{
		{p1, p2, p3},
		{p1, p3, p2},
		{p2, p1, p3},
		{p2, p3, p1},
		{p3, p1, p2},
		{p3, p2, p1},
	}

	want := merge.Profiles(orders[0]...)
	assert.InDelta(t, 0.6, want.Value("m", "S1"), 1e-12)
	for _, order := range orders[1:] {
		got := merge.Profiles(order...)
		assert.Equal(t, want.Value("m", "S1"), got.Value("m", "S1"))

		var wantOut, gotOut bytes.Buffer
		require.NoError(t, tabular.WriteTable(&wantOut, "Species", want))
		require.NoError(t, tabular.WriteTable(&gotOut, "Species", got))
		assert.Equal(t, wantOut.String(), gotOut.String())
	}
}

func TestProfilesKeepsEmptySample(t *testing.T) {
	tbl := merge.Profiles(
		taxa.NewProfile("S1", map[string]float64{"X": 1}),
		taxa.NewProfile("S2", nil),
	)
	assert.Equal(t, []string{"S1", "S2"}, tbl.Samples())
	assert.Zero(t, tbl.Value("X", "S2"))
}

func TestTables(t *testing.T) {
	left := merge.Profiles(taxa.NewProfile("S1", map[string]float64{"X": 0.5, "Y": 0.5}))
	right := merge.Profiles(
		taxa.NewProfile("S1", map[string]float64{"X": 0.5}),
		taxa.NewProfile("S2", map[string]float64{"Y": 1}),
	)

	tbl := merge.Tables(left, right)
	assert.Equal(t, 1.0, tbl.Value("X", "S1"))
	assert.Equal(t, 0.5, tbl.Value("Y", "S1"))
	assert.Equal(t, 1.0, tbl.Value("Y", "S2"))
	assert.True(t, merge.Tables().Empty())
}

func TestReadCounts(t *testing.T) {
	got := merge.ReadCounts(
		taxa.ReadCounts{"S1": 100, "S2": 50},
		taxa.ReadCounts{"S2": 25},
		nil,
	)
	assert.Equal(t, taxa.ReadCounts{"S1": 100, "S2": 75}, got)
}
