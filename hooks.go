package panmap

import (
	"sync"

	"github.com/agentstation/panmap/pkg/reconcile"
)

// Hook function types for pipeline events
type (
	// SampleAggregatedHook is called once per input file after aggregation
	SampleAggregatedHook func(sample SampleResult)

	// RankReconciledHook is called after a rank has been reconciled
	RankReconciledHook func(result *reconcile.Result)
)

// hooks manages event callbacks for a pipeline. Hooks run on the goroutine
// that produced the event, so sample hooks may run concurrently.
type hooks struct {
	mu                 sync.RWMutex
	onSampleAggregated []SampleAggregatedHook
	onRankReconciled   []RankReconciledHook
}

// OnSampleAggregated registers a callback for aggregated samples
func (h *hooks) OnSampleAggregated(fn SampleAggregatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSampleAggregated = append(h.onSampleAggregated, fn)
}

// OnRankReconciled registers a callback for reconciled ranks
func (h *hooks) OnRankReconciled(fn RankReconciledHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRankReconciled = append(h.onRankReconciled, fn)
}

func (h *hooks) sampleAggregated(s SampleResult) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onSampleAggregated {
		fn(s)
	}
}

func (h *hooks) rankReconciled(r *reconcile.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onRankReconciled {
		fn(r)
	}
}
