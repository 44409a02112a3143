// Package tabular reads and writes the delimited text files panmap works
// with: classifier output, reference and synonym tables, manifests,
// abundance tables, audit tables and read counts.
package tabular

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"

	"github.com/agentstation/panmap/pkg/constants"
	"github.com/agentstation/panmap/pkg/errors"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Comma returns the field delimiter for path: a comma for .csv files and a
// tab for everything else. A trailing .gz is ignored.
func Comma(path string) rune {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(strings.ToLower(path), ".gz")))
	if ext == ".csv" {
		return ','
	}
	return '\t'
}

// SampleID returns the sample identifier for a file: its base name up to
// the first dot.
func SampleID(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens path for reading, decompressing it when it starts with the
// gzip magic bytes.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	r, err := Decompress(f)
	if err != nil {
		_ = f.Close()
		return nil, errors.WrapParse("gzip", path, err)
	}
	if rc, ok := r.(*readCloser); ok {
		rc.closers = append(rc.closers, f)
		return rc, nil
	}
	return &readCloser{Reader: r, closers: []io.Closer{f}}, nil
}

// Decompress wraps r in a parallel gzip reader when the stream is
// gzip-compressed and returns it buffered otherwise.
func Decompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, constants.ScannerBufferSize)
	magic, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	if !bytes.Equal(magic, gzipMagic) {
		return br, nil
	}
	zr, err := pgzip.NewReader(br)
	if err != nil {
		return nil, err
	}
	return &readCloser{Reader: zr, closers: []io.Closer{zr}}, nil
}

// WriteFile writes path through a temporary file that is renamed into
// place once write succeeds, so readers never see a partial table.
func WriteFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Chmod(constants.FilePermissions); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
