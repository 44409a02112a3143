package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/panmap/pkg/errors"
	"github.com/agentstation/panmap/pkg/logging"
	"github.com/agentstation/panmap/pkg/taxa"
)

const (
	sampleA = "r1\t-\t-\t-\tEscherichia\t0.9\tEscherichia_coli\t0.9\n" +
		"r2\t-\t-\t-\tEscherichia\t0.9\tEscherichia_coli\t0.9\n" +
		"r3\t-\t-\t-\tShigella\t0.9\tShigella_flexneri\t0.9\n" +
		"r4\t-\t-\t-\tBacteroides\t0.9\tBacteroides_fragilis\t0.3\n"
	sampleB = "r1\t-\t-\t-\tEscherichia\t0.8\tEscherichia_coli\t0.8\n" +
		"r2\t-\t-\t-\tOddity\t0.8\tAMBIGUOUS\t0.1\n"

	catalogFixture = "Species\tGenus\n" +
		"Escherichia coli\tEscherichia\n" +
		"Bacteroides fragilis\tBacteroides\n"
	genusSynonymsFixture = "Name in QIIME2\tName in AGORA2\n" +
		"Shigella\tEscherichia\n"
)

type fixture struct {
	dir     string
	out     string
	inputs  []string
	catalog string
	genus   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := isolate(t)
	f := fixture{
		dir:     dir,
		out:     filepath.Join(dir, "results"),
		catalog: filepath.Join(dir, "agora2.tsv"),
		genus:   filepath.Join(dir, "genus_synonyms.tsv"),
	}
	files := map[string]string{
		"A.spingo.tsv":       sampleA,
		"B.spingo.tsv":       sampleB,
		"agora2.tsv":         catalogFixture,
		"genus_synonyms.tsv": genusSynonymsFixture,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	f.inputs = []string{filepath.Join(dir, "A.spingo.tsv"), filepath.Join(dir, "B.spingo.tsv")}
	return f
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg, err := loadConfig("")
	require.NoError(t, err)
	cfg.LogLevel = "error"

	nop := logging.NewNopLogger()
	a, err := New("1.2.3", "abc123", "2026-01-01", "test", WithConfig(cfg), WithLogger(nop))
	require.NoError(t, err)
	return a
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, a *App, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := a.createRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	isolate(t)
	a := newTestApp(t)

	assert.Equal(t, "1.2.3", a.Version())
	assert.Equal(t, "abc123", a.Commit())
	assert.Equal(t, "2026-01-01", a.Date())
	assert.Equal(t, "test", a.BuiltBy())
	assert.NotNil(t, a.Logger())
	assert.NotNil(t, a.Config())
	assert.Equal(t, ".", a.OutputDir())
}

// TestApp_Metrics_ThreadSafe verifies concurrent Metrics() calls share one recorder.
func TestApp_Metrics_ThreadSafe(t *testing.T) {
	isolate(t)
	a := newTestApp(t)

	const goroutines = 50
	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Same(t, a.Metrics(), a.Metrics())
		}()
	}
	wg.Wait()
}

func TestApp_Reference_Cached(t *testing.T) {
	f := newFixture(t)
	a := newTestApp(t)
	a.config.Catalog = f.catalog
	a.config.GenusSynonyms = f.genus

	ref, ok, err := a.reference(t.Context(), taxa.Genus)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, ref.Catalog.Contains("Bacteroides"))
	canonical, found := ref.Synonyms.Lookup("Shigella")
	assert.True(t, found)
	assert.Equal(t, "Escherichia", canonical)

	again, _, err := a.reference(t.Context(), taxa.Genus)
	require.NoError(t, err)
	assert.Same(t, ref.Catalog, again.Catalog)

	species, ok, err := a.reference(t.Context(), taxa.Species)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, species.Catalog.Contains("Escherichia coli"))
	assert.Zero(t, species.Synonyms.Len())
}

func TestApp_Engine_NoCatalog(t *testing.T) {
	isolate(t)
	a := newTestApp(t)

	_, err := a.Engine(t.Context(), taxa.Genus)
	var ce *errors.ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestRunCommand(t *testing.T) {
	f := newFixture(t)
	a := newTestApp(t)
	report := filepath.Join(f.dir, "report.md")
	metricsFile := filepath.Join(f.dir, "panmap.prom")

	out, err := execute(t, a, append([]string{"run",
		"-o", "tsv",
		"-d", f.out,
		"--catalog", f.catalog,
		"--genus-synonyms", f.genus,
		"--metrics-file", metricsFile,
		"--report", report,
	}, f.inputs...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "genus\t4\t2\t1\t1\t2\t1\n")

	assert.Equal(t,
		"Genus\tA\tB\npan_Bacteroides\t0.25\t0\npan_Escherichia\t0.75\t0.5\n",
		readFile(t, filepath.Join(f.out, "reconciled_genus.tsv")))
	assert.Equal(t,
		"Sample\tTotal Reads\nA\t3\nB\t1\n",
		readFile(t, filepath.Join(f.out, "total_reads.tsv")))
	assert.Contains(t, readFile(t, filepath.Join(f.out, "reconciled_species.tsv")), "pan_Escherichia_coli")
	assert.Contains(t, readFile(t, filepath.Join(f.out, "absent_present_species.tsv")), "Shigella flexneri\tAA_absent")
	assert.Contains(t, readFile(t, report), "# panmap run report")

	require.NoError(t, a.Shutdown(context.Background()))
	assert.Contains(t, readFile(t, metricsFile), "panmap_")
}

func TestRunCommandWithoutReference(t *testing.T) {
	f := newFixture(t)
	a := newTestApp(t)

	_, err := execute(t, a, append([]string{"run", "-o", "json", "-d", f.out}, f.inputs...)...)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(f.out, "abundances_genus.tsv"))
	assert.FileExists(t, filepath.Join(f.out, "total_reads.tsv"))
	assert.NoFileExists(t, filepath.Join(f.out, "reconciled_genus.tsv"))
	assert.NoFileExists(t, filepath.Join(f.out, "absent_present_genus.tsv"))
}

func TestAggregateThenMergeThenReconcile(t *testing.T) {
	f := newFixture(t)
	a := newTestApp(t)
	profiles := filepath.Join(f.dir, "profiles")

	_, err := execute(t, a, append([]string{"aggregate", "-o", "tsv", "-d", profiles, "--rank", "genus"}, f.inputs...)...)
	require.NoError(t, err)
	assert.Equal(t,
		"Genus\tA\nBacteroides\t0.25\nEscherichia\t0.5\nShigella\t0.25\n",
		readFile(t, filepath.Join(profiles, "A_genus.tsv")))
	assert.NoFileExists(t, filepath.Join(profiles, "A_species.tsv"))

	combined := filepath.Join(f.dir, "combined_genus.tsv")
	_, err = execute(t, newTestApp(t), "merge", "--rank", "genus", "-O", combined,
		filepath.Join(profiles, "A_genus.tsv"), filepath.Join(profiles, "B_genus.tsv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(readFile(t, combined), "Genus\tA\tB\n"))

	out, err := execute(t, newTestApp(t), "reconcile", "-o", "tsv", "-d", f.out,
		"--catalog", f.catalog, "--genus-synonyms", f.genus, "--rank", "genus", "--audit", combined)
	require.NoError(t, err)
	assert.Contains(t, out, "Shigella")

	assert.Equal(t,
		"Genus\tA\tB\npan_Bacteroides\t0.25\t0\npan_Escherichia\t0.75\t0.5\n",
		readFile(t, filepath.Join(f.out, "reconciled_genus.tsv")))
}

func TestMergeReadCounts(t *testing.T) {
	f := newFixture(t)
	first := filepath.Join(f.dir, "run1.tsv")
	second := filepath.Join(f.dir, "run2.tsv")
	require.NoError(t, os.WriteFile(first, []byte("Sample\tTotal Reads\nA\t3\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("Sample\tTotal Reads\nA\t2\nB\t1\n"), 0o644))

	out, err := execute(t, newTestApp(t), "merge", "--read-counts", first, second)
	require.NoError(t, err)
	assert.Equal(t, "Sample\tTotal Reads\nA\t5\nB\t1\n", out)
}

func TestReconcileRequiresCatalog(t *testing.T) {
	f := newFixture(t)
	_, err := execute(t, newTestApp(t), "reconcile", "--rank", "genus", f.inputs[0])
	var ce *errors.ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestSetupCommandValidation(t *testing.T) {
	f := newFixture(t)

	_, err := execute(t, newTestApp(t), append([]string{"run", "-o", "xml"}, f.inputs...)...)
	assert.True(t, errors.IsValidationError(err))

	_, err = execute(t, newTestApp(t), append([]string{"run", "-j", "0"}, f.inputs...)...)
	assert.True(t, errors.IsValidationError(err))
}

func TestVersionCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, newTestApp(t), "version")
	require.NoError(t, err)
	assert.Equal(t, "panmap version 1.2.3\n", out)

	out, err = execute(t, newTestApp(t), "version", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "commit: abc123")
	assert.Contains(t, out, "built by: test")
}

func TestConfigFileFromArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"run", "a.tsv"}, ""},
		{[]string{"--config", "x.yaml", "run"}, "x.yaml"},
		{[]string{"run", "--config=y.yaml"}, "y.yaml"},
		{[]string{"run", "--", "--config", "z.yaml"}, ""},
		{[]string{"run", "--config"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, configFileFromArgs(tt.args), "args %v", tt.args)
	}
}

func TestExecuteWithConfigFile(t *testing.T) {
	f := newFixture(t)
	cfgPath := filepath.Join(f.dir, "panmap.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"catalog: "+f.catalog+"\n"+
			"synonyms_genus: "+f.genus+"\n"+
			"output_dir: "+f.out+"\n"+
			"prefix: AA_\n"), 0o644))

	a := newTestApp(t)
	require.NoError(t, a.Execute(t.Context(), append([]string{"--config", cfgPath, "--log-level", "error", "-o", "json", "run"}, f.inputs...)))
	assert.Contains(t, readFile(t, filepath.Join(f.out, "reconciled_genus.tsv")), "AA_Escherichia")
}
