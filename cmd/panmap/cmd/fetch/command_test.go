package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/panmap/internal/blob/memory"
	"github.com/agentstation/panmap/internal/cmd/application"
	"github.com/agentstation/panmap/internal/retrieval"
	"github.com/agentstation/panmap/pkg/errors"
	"github.com/agentstation/panmap/pkg/logging"
)

// newArchive serves file reports for any accession except ERRBAD, whose
// files always fail.
func newArchive(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/filereport" {
			acc := r.URL.Query().Get("accession")
			host := strings.TrimPrefix(srv.URL, "http://")
			_, _ = fmt.Fprintf(w, "run_accession\tfastq_ftp\n%s\t%s/files/%s_1.fastq.gz;%s/files/%s_2.fastq.gz\n", acc, host, acc, host, acc)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/files/ERRBAD") {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "reads")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newMock(t *testing.T, store *memory.Store) *application.Mock {
	t.Helper()
	srv := newArchive(t)
	return &application.Mock{
		FetcherFunc: func(_ context.Context, opts ...retrieval.Option) (*retrieval.Fetcher, error) {
			base := []retrieval.Option{
				retrieval.WithEndpoint(srv.URL + "/filereport"),
				retrieval.WithLinkScheme("http"),
				retrieval.WithAttempts(2),
				retrieval.WithBackoff(time.Millisecond, time.Millisecond),
				retrieval.WithTempDir(t.TempDir()),
				retrieval.WithLogger(logging.NewNopLogger()),
			}
			return retrieval.New(store, append(base, opts...)...)
		},
		OutputFormatFunc: func() string { return "tsv" },
	}
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFetchCommand(t *testing.T) {
	store := memory.New()
	cmd := NewCommand(newMock(t, store))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{writeManifest(t, "accession\nERR1\nERR2\n")})
	require.NoError(t, cmd.ExecuteContext(t.Context()))

	for _, key := range []string{"ERR1_1.fastq.gz", "ERR1_2.fastq.gz", "ERR2_1.fastq.gz", "ERR2_2.fastq.gz"} {
		_, err := store.Head(t.Context(), key)
		assert.NoError(t, err, key)
	}
	assert.Contains(t, out.String(), "ERR2\tERR2_1.fastq.gz\tERR2_2.fastq.gz")
}

func TestFetchCommandStopsAtFailure(t *testing.T) {
	store := memory.New()
	cmd := NewCommand(newMock(t, store))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{writeManifest(t, "accession\nERR1\nERRBAD\nERR3\n")})

	err := cmd.ExecuteContext(t.Context())
	require.Error(t, err)
	assert.True(t, errors.IsRetrievalExhausted(err))

	assert.Contains(t, out.String(), "ERR1")
	_, err = store.Head(t.Context(), "ERR3_1.fastq.gz")
	assert.True(t, errors.IsNotFound(err))
}

func TestFetchCommandMissingManifest(t *testing.T) {
	cmd := NewCommand(newMock(t, memory.New()))
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope.tsv")})
	assert.Error(t, cmd.ExecuteContext(t.Context()))
}
