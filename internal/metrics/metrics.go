// Package metrics records batch counters for a panmap run in a private
// Prometheus registry. panmap is a batch tool, so metrics are written once
// to a node_exporter textfile instead of being scraped.
//
// All Recorder methods are safe on a nil *Recorder, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentstation/panmap/pkg/aggregate"
	"github.com/agentstation/panmap/pkg/errors"
	"github.com/agentstation/panmap/pkg/reconcile"
	"github.com/agentstation/panmap/pkg/taxa"
)

const namespace = "panmap"

// Download outcomes.
const (
	DownloadSuccess = "success"
	DownloadRetry   = "retry"
	DownloadFailure = "failure"
	DownloadSkipped = "skipped"
)

// Recorder holds the run's collectors.
type Recorder struct {
	registry      *prometheus.Registry
	records       *prometheus.CounterVec
	samples       *prometheus.CounterVec
	decisions     *prometheus.CounterVec
	collisions    *prometheus.CounterVec
	downloads     *prometheus.CounterVec
	lookups       *prometheus.CounterVec
	downloadBytes prometheus.Counter
	stages        *prometheus.HistogramVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "records_total",
			Help:      "Classified reads seen by aggregation, by rank and outcome.",
		}, []string{"rank", "outcome"}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "samples_total",
			Help:      "Samples aggregated, by rank.",
		}, []string{"rank"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "decisions_total",
			Help:      "Reconciliation decisions, by rank and status.",
		}, []string{"rank", "status"}),
		collisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "collisions_total",
			Help:      "Reconciled rows fed by more than one taxon, by rank.",
		}, []string{"rank"}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "attempts_total",
			Help:      "Read file download attempts, by outcome.",
		}, []string{"outcome"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "lookups_total",
			Help:      "File report lookup attempts, by outcome.",
		}, []string{"outcome"}),
		downloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "bytes_total",
			Help:      "Bytes of read files stored.",
		}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"stage"}),
	}
	r.registry.MustRegister(
		r.records, r.samples, r.decisions, r.collisions,
		r.downloads, r.lookups, r.downloadBytes, r.stages,
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveAggregation records the record outcomes of one sample.
func (r *Recorder) ObserveAggregation(rank taxa.Rank, stats aggregate.Stats) {
	if r == nil {
		return
	}
	l := rank.String()
	r.samples.WithLabelValues(l).Inc()
	r.records.WithLabelValues(l, "accepted").Add(float64(stats.Accepted))
	r.records.WithLabelValues(l, "ambiguous").Add(float64(stats.Ambiguous))
	r.records.WithLabelValues(l, "low_confidence").Add(float64(stats.LowConfidence))
	r.records.WithLabelValues(l, "malformed").Add(float64(stats.Malformed))
}

// ObserveReconciliation records the decisions of one reconciliation.
func (r *Recorder) ObserveReconciliation(res *reconcile.Result) {
	if r == nil || res == nil {
		return
	}
	l := res.Rank.String()
	r.decisions.WithLabelValues(l, reconcile.Present.String()).Add(float64(res.Stats.Present))
	r.decisions.WithLabelValues(l, reconcile.Renamed.String()).Add(float64(res.Stats.Renamed))
	r.decisions.WithLabelValues(l, reconcile.Absent.String()).Add(float64(res.Stats.Absent))
	r.collisions.WithLabelValues(l).Add(float64(res.Stats.Collisions))
}

// ObserveDownload records one download attempt and, on success, its size.
func (r *Recorder) ObserveDownload(outcome string, bytes int64) {
	if r == nil {
		return
	}
	r.downloads.WithLabelValues(outcome).Inc()
	if bytes > 0 {
		r.downloadBytes.Add(float64(bytes))
	}
}

// ObserveLookup records one file report lookup outcome.
func (r *Recorder) ObserveLookup(outcome string) {
	if r == nil {
		return
	}
	r.lookups.WithLabelValues(outcome).Inc()
}

// ObserveStage records how long a pipeline stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stages.WithLabelValues(stage).Observe(d.Seconds())
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return errors.WrapIO("write", path, prometheus.WriteToTextfile(path, r.registry))
}
