package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/panmap/internal/blob"
	"github.com/agentstation/panmap/pkg/constants"
	"github.com/agentstation/panmap/pkg/errors"
)

// isolate runs the test in an empty working and home directory so stray
// .env or .panmap.yaml files cannot leak in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "Species", cfg.SpeciesColumn)
	assert.Equal(t, "Genus", cfg.GenusColumn)
	assert.Equal(t, constants.DefaultQueryColumn, cfg.QueryColumn)
	assert.Equal(t, constants.DefaultCanonicalColumn, cfg.CanonicalColumn)
	assert.Equal(t, constants.DefaultPanPrefix, cfg.Prefix)
	assert.Equal(t, "sum", cfg.Strategy)
	assert.Equal(t, constants.DefaultMinConfidence, cfg.MinConfidence)
	assert.Equal(t, constants.DefaultWorkers, cfg.Workers)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, blob.DriverFilesystem, cfg.Blob.Driver)
	assert.Equal(t, constants.ENAFileReportURL, cfg.Endpoint)
	assert.Equal(t, constants.MaxDownloadAttempts, cfg.Attempts)
	assert.Equal(t, constants.RetryBackoff, cfg.Backoff)
	assert.Empty(t, cfg.Catalog)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoadConfigEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("PANMAP_CATALOG", "/data/agora2.tsv")
	t.Setenv("PANMAP_PREFIX", "AA_")
	t.Setenv("PANMAP_WORKERS", "9")
	t.Setenv("PANMAP_RETRIEVAL_ATTEMPTS", "3")
	t.Setenv("PANMAP_RETRIEVAL_BACKOFF", "250ms")
	t.Setenv("PANMAP_BLOB_DRIVER", "s3")
	t.Setenv("PANMAP_S3_BUCKET", "reads")
	t.Setenv("AWS_REGION", "eu-west-2")

	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/data/agora2.tsv", cfg.Catalog)
	assert.Equal(t, "AA_", cfg.Prefix)
	assert.Equal(t, 9, cfg.Workers)
	assert.Equal(t, 3, cfg.Attempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Backoff)
	assert.Equal(t, blob.DriverS3, cfg.Blob.Driver)
	assert.Equal(t, "reads", cfg.Blob.S3.Bucket)
	assert.Equal(t, "eu-west-2", cfg.Blob.S3.Region)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "panmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"catalog: ref/agora2.tsv\n"+
			"synonyms_genus: ref/genus.tsv\n"+
			"strategy: strict\n"+
			"retrieval:\n  max_backoff: 5s\n"), 0o644))

	// Environment wins over the file
	t.Setenv("PANMAP_STRATEGY", "sum")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "ref/agora2.tsv", cfg.Catalog)
	assert.Equal(t, "ref/genus.tsv", cfg.GenusSynonyms)
	assert.Equal(t, "sum", cfg.Strategy)
	assert.Equal(t, 5*time.Second, cfg.MaxBackoff)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := loadConfig(filepath.Join(dir, "nope.yaml"))
	var ce *errors.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "config", ce.Component)
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PANMAP_OUTPUT_DIR=results\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("PANMAP_OUTPUT_DIR") })

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "results", cfg.OutputDir)
}

func TestUpdateFromFlags(t *testing.T) {
	cfg := &Config{Format: "json", LogLevel: "warn"}

	cfg.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "warn", cfg.LogLevel)

	cfg.UpdateFromFlags(false, true, false, "yaml", "debug")
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, "debug", cfg.LogLevel)
}
