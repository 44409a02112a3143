package s3_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/panmap/internal/blob/core"
	"github.com/agentstation/panmap/internal/blob/s3"
	"github.com/agentstation/panmap/pkg/errors"
)

// mockRoundTripper fakes the subset of S3 the store uses, keyed by the
// object path after the bucket.
type mockRoundTripper struct {
	mu    sync.Mutex
	state map[string]stored
}

type stored struct {
	body        []byte
	contentType string
}

func response(status int, body []byte, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(body)), Header: header}
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) { //nolint:cyclop
	m.mu.Lock()
	defer m.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	if req.Method == http.MethodGet && strings.Contains(req.URL.RawQuery, "list-type=2") {
		prefix := req.URL.Query().Get("prefix")
		var keys []string
		for k := range m.state {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(m.state[k].body))
		}
		b.WriteString("</ListBucketResult>")
		return response(http.StatusOK, []byte(b.String()), http.Header{"Content-Type": {"application/xml"}}), nil
	}

	switch req.Method {
	case http.MethodHead, http.MethodGet:
		st, ok := m.state[key]
		if !ok {
			return response(http.StatusNotFound, nil, nil), nil
		}
		header := http.Header{
			"Content-Length": {strconv.Itoa(len(st.body))},
			"Content-Type":   {st.contentType},
			"ETag":           {`"etag123"`},
			"Last-Modified":  {time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(http.TimeFormat)},
		}
		if req.Method == http.MethodHead {
			return response(http.StatusOK, nil, header), nil
		}
		return response(http.StatusOK, st.body, header), nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunked(body); ok {
			body = dec
		}
		m.state[key] = stored{body: body, contentType: req.Header.Get("Content-Type")}
		return response(http.StatusOK, nil, http.Header{"ETag": {`"etag123"`}}), nil
	case http.MethodDelete:
		delete(m.state, key)
		return response(http.StatusNoContent, nil, nil), nil
	}
	return response(http.StatusNotImplemented, nil, nil), nil
}

// decodeChunked decodes a single-chunk aws-chunked payload.
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 || parts[2] != "0" {
		return nil, false
	}
	size, err := strconv.ParseInt(parts[0], 16, 64)
	if err != nil || int64(len(parts[1])) != size {
		return nil, false
	}
	return []byte(parts[1]), true
}

func newMockStore(t *testing.T, prefix string) (*s3.Store, *mockRoundTripper) {
	t.Helper()
	rt := &mockRoundTripper{state: make(map[string]stored)}
	store, err := s3.New(context.Background(), s3.Config{
		Region:          "us-east-1",
		Bucket:          "reads",
		Prefix:          prefix,
		Endpoint:        "https://mock.s3.local",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
		HTTPClient:      &http.Client{Transport: rt},
	})
	require.NoError(t, err)
	return store, rt
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, rt := newMockStore(t, "runs/2024")
	assert.Equal(t, core.DriverS3, store.Driver())

	info, err := store.Put(ctx, "ERR1_1.fastq.gz", strings.NewReader("@r1\nACGT\n+\nFFFF\n"), core.PutOptions{ContentType: "application/gzip"})
	require.NoError(t, err)
	assert.Equal(t, "ERR1_1.fastq.gz", info.Key)
	assert.Equal(t, int64(16), info.Size)
	assert.Equal(t, "etag123", info.ETag)

	rt.mu.Lock()
	_, ok := rt.state["runs/2024/ERR1_1.fastq.gz"]
	rt.mu.Unlock()
	assert.True(t, ok, "object key should carry the configured prefix")

	_, rc, err := store.Get(ctx, "ERR1_1.fastq.gz")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "@r1\nACGT\n+\nFFFF\n", string(body))

	_, err = store.Put(ctx, "ERR1_2.fastq.gz", strings.NewReader("x"), core.PutOptions{})
	require.NoError(t, err)

	infos, err := store.List(ctx, "ERR1_")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "ERR1_1.fastq.gz", infos[0].Key)
	assert.Equal(t, "ERR1_2.fastq.gz", infos[1].Key)

	deleted, err := store.Delete(ctx, "ERR1_2.fastq.gz")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(ctx, "ERR1_2.fastq.gz")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestStoreNotFound(t *testing.T) {
	store, _ := newMockStore(t, "")

	_, err := store.Head(context.Background(), "missing")
	assert.True(t, errors.IsNotFound(err))

	_, _, err = store.Get(context.Background(), "missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := s3.New(context.Background(), s3.Config{})
	var ce *errors.ConfigError
	assert.ErrorAs(t, err, &ce)
}
