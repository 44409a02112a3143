package logging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/panmap/pkg/logging"
)

func TestContextFunctions(t *testing.T) {
	t.Run("FromContext falls back to default", func(t *testing.T) {
		assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
		//nolint:staticcheck // nil context is tolerated on purpose
		assert.Same(t, logging.Default(), logging.FromContext(nil))
	})

	t.Run("WithRunID stores and tags the run", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithRunID(ctx, "run-42")

		assert.Equal(t, "run-42", logging.RunID(ctx))
		logging.Ctx(ctx).Info().Msg("started")
		tl.AssertContains(t, `"run_id":"run-42"`)
	})

	t.Run("RunID is empty without a run", func(t *testing.T) {
		assert.Empty(t, logging.RunID(context.Background()))
	})

	t.Run("chaining context functions", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithAccession(ctx, "ERR1")
		ctx = logging.WithOperation(ctx, "fetch")
		ctx = logging.WithFields(ctx, map[string]any{"attempt": 3, "partial": true})
		ctx = logging.WithError(ctx, errors.New("reset by peer"))
		ctx = logging.WithError(ctx, nil)

		logging.FromContext(ctx).Warn().Msg("retrying")
		assert.True(t, tl.ContainsAll(`"accession":"ERR1"`, `"operation":"fetch"`,
			`"attempt":3`, `"partial":true`, `"error":"reset by peer"`))
	})
}
