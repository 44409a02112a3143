package fs_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/panmap/internal/blob/core"
	"github.com/agentstation/panmap/internal/blob/fs"
	"github.com/agentstation/panmap/pkg/errors"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := fs.New(root)
	require.NoError(t, err)
	assert.Equal(t, core.DriverFilesystem, store.Driver())

	info, err := store.Put(ctx, "ERR1/ERR1_1.fastq.gz", strings.NewReader("reads"), core.PutOptions{
		ContentType: "application/gzip",
		Metadata:    map[string]string{"accession": "ERR1"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.Len(t, info.ETag, 64)
	assert.FileExists(t, filepath.Join(root, "ERR1", "ERR1_1.fastq.gz"))

	head, err := store.Head(ctx, "ERR1/ERR1_1.fastq.gz")
	require.NoError(t, err)
	assert.Equal(t, info.ETag, head.ETag)
	assert.Equal(t, "ERR1", head.Metadata["accession"])

	got, rc, err := store.Get(ctx, "ERR1/ERR1_1.fastq.gz")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	assert.Equal(t, "reads", string(data))
	assert.Equal(t, "application/gzip", got.ContentType)

	info, err = store.Put(ctx, "ERR1/ERR1_1.fastq.gz", strings.NewReader("more reads"), core.PutOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Size)

	_, err = store.Put(ctx, "ERR2_1.fastq.gz", strings.NewReader("x"), core.PutOptions{})
	require.NoError(t, err)

	infos, err := store.List(ctx, "ERR1/")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "ERR1/ERR1_1.fastq.gz", infos[0].Key)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	deleted, err := store.Delete(ctx, "ERR2_1.fastq.gz")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = store.Delete(ctx, "ERR2_1.fastq.gz")
	require.NoError(t, err)
	assert.False(t, deleted)

	entries, err := os.ReadDir(filepath.Join(root, "ERR1"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "data file and sidecar only, no temp files")
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()
	store, err := fs.New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Head(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))

	_, _, err = store.Get(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))

	for _, key := range []string{"", "../escape", "/abs", "x.meta"} {
		_, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{})
		assert.True(t, errors.IsValidationError(err), "key %q", key)
	}
}
