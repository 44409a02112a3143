package errors_test

import (
	"errors"
	"testing"

	pkgerrors "github.com/agentstation/panmap/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "sample",
			ID:       "SRR123",
		}
		assert.Equal(t, "sample with ID SRR123 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("taxon", "Escherichia")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "rank",
			Message: "must be species or genus",
		}
		assert.Equal(t, "validation failed for field rank: must be species or genus", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestColumnError(t *testing.T) {
	err := pkgerrors.NewColumnError("synonym table", "names.tsv",
		[]string{"Name in AGORA2"}, []string{"Name in QIIME2", "Notes"})

	assert.Contains(t, err.Error(), "synonym table names.tsv")
	assert.Contains(t, err.Error(), `"Name in AGORA2"`)
	assert.Contains(t, err.Error(), `"Notes"`)
	assert.True(t, pkgerrors.IsValidationError(err))

	empty := pkgerrors.NewColumnError("manifest", "", []string{"accession"}, nil)
	assert.Contains(t, empty.Error(), "found: none")
}

func TestRetrievalError(t *testing.T) {
	base := errors.New("connection reset")
	err := pkgerrors.NewRetrievalError("SRR000001", "SRR000001_1.fastq.gz", 15, base)

	assert.Contains(t, err.Error(), "SRR000001_1.fastq.gz")
	assert.Contains(t, err.Error(), "15 attempts")
	assert.True(t, pkgerrors.IsRetrievalExhausted(err))
	assert.Equal(t, base, errors.Unwrap(err))

	noFile := pkgerrors.NewRetrievalError("SRR000002", "", 3, base)
	assert.NotContains(t, noFile.Error(), "(")
}

func TestConflictError(t *testing.T) {
	err := pkgerrors.NewConflictError("pan_Baz", []string{"Bar", "Foo"})
	assert.Equal(t, `taxa "Bar", "Foo" all resolve to pan_Baz`, err.Error())
	assert.True(t, pkgerrors.IsConflict(err))
	assert.False(t, pkgerrors.IsValidationError(err))
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("reconcile", "unknown strategy \"max\"", nil)
	assert.Contains(t, err.Error(), "reconcile")
	assert.Contains(t, err.Error(), "unknown strategy")

	plain := &pkgerrors.ConfigError{Message: "no catalog"}
	assert.Equal(t, "configuration error: no catalog", plain.Error())
}

func TestIOError(t *testing.T) {
	t.Run("unwrap", func(t *testing.T) {
		baseErr := errors.New("disk full")
		err := pkgerrors.NewIOError("write", "/data/reconciled_species.tsv", baseErr)
		assert.Equal(t, baseErr, err.Unwrap())
		assert.Contains(t, err.Error(), "/data/reconciled_species.tsv")
	})

	t.Run("wrap helper", func(t *testing.T) {
		err := pkgerrors.WrapIO("open", "sample.tsv", errors.New("permission denied"))
		var ioErr *pkgerrors.IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, "open", ioErr.Operation)
		assert.Nil(t, pkgerrors.WrapIO("open", "x", nil))
	})
}

func TestResourceError(t *testing.T) {
	err := pkgerrors.WrapResource("load", "catalog", "agora.tsv", pkgerrors.ErrNotFound)
	var resErr *pkgerrors.ResourceError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "load", resErr.Operation)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Nil(t, pkgerrors.WrapResource("load", "catalog", "", nil))
}

func TestParseError(t *testing.T) {
	t.Run("with file and line", func(t *testing.T) {
		err := &pkgerrors.ParseError{
			Format:  "tsv",
			File:    "abundances_genus.tsv",
			Line:    10,
			Message: "invalid number",
		}
		assert.Equal(t, "parse error in tsv at abundances_genus.tsv:10: invalid number", err.Error())
	})

	t.Run("wrap helper", func(t *testing.T) {
		base := errors.New("bad quote")
		err := pkgerrors.WrapParse("csv", "manifest.csv", base)
		assert.Contains(t, err.Error(), "manifest.csv")
		assert.True(t, errors.Is(err, base))
	})
}
