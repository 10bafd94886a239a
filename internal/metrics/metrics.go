// Package metrics collects per-run alignment metrics and writes them in the
// Prometheus textfile format for node_exporter style collection.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Item outcomes recorded on ItemsTotal.
const (
	StatusAligned = "aligned"
	StatusCached  = "cached"
	StatusFailed  = "failed"
)

// Metrics holds the collectors for one alignment run on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ItemsTotal          *prometheus.CounterVec
	CandidatesEvaluated prometheus.Counter
	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter
	ItemDuration        prometheus.Histogram
	RunDuration         prometheus.Gauge
	BestDistance        *prometheus.GaugeVec
	BestTime            *prometheus.GaugeVec
	LastRunTimestamp    prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ItemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sedwarp_items_total",
				Help: "Core/variable items processed by outcome (aligned, cached, failed).",
			},
			[]string{"status"},
		),
		CandidatesEvaluated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sedwarp_candidates_evaluated_total",
				Help: "Reference cutoff times swept across all items.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sedwarp_cache_hits_total",
				Help: "Total number of result cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sedwarp_cache_misses_total",
				Help: "Total number of result cache misses.",
			},
		),
		ItemDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sedwarp_item_duration_seconds",
				Help:    "Time spent aligning a single item in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		RunDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sedwarp_run_duration_seconds",
				Help: "Wall time of the last alignment run in seconds.",
			},
		),
		BestDistance: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sedwarp_best_distance",
				Help: "Minimum DTW distance found per item.",
			},
			[]string{"core", "variable"},
		),
		BestTime: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sedwarp_best_time",
				Help: "Reference cutoff time of the chosen alignment per item.",
			},
			[]string{"core", "variable"},
		),
		LastRunTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sedwarp_last_run_timestamp_seconds",
				Help: "Unix time at which the last alignment run finished.",
			},
		),
	}

	m.registry.MustRegister(
		m.ItemsTotal,
		m.CandidatesEvaluated,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.ItemDuration,
		m.RunDuration,
		m.BestDistance,
		m.BestTime,
		m.LastRunTimestamp,
	)
	return m
}

// Registry exposes the private registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveCache records one cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.Inc()
	} else {
		m.CacheMissesTotal.Inc()
	}
}

// ObserveItem records a finished item. Cached items do not count toward
// the candidate total or the item duration.
func (m *Metrics) ObserveItem(core, variable string, bestDistance, bestTime float64, candidates int, cached bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	if cached {
		m.ItemsTotal.WithLabelValues(StatusCached).Inc()
	} else {
		m.ItemsTotal.WithLabelValues(StatusAligned).Inc()
		m.CandidatesEvaluated.Add(float64(candidates))
		m.ItemDuration.Observe(elapsed.Seconds())
	}
	m.BestDistance.WithLabelValues(core, variable).Set(bestDistance)
	m.BestTime.WithLabelValues(core, variable).Set(bestTime)
}

// ObserveFailure records an item that could not be aligned.
func (m *Metrics) ObserveFailure() {
	if m == nil {
		return
	}
	m.ItemsTotal.WithLabelValues(StatusFailed).Inc()
}

// ObserveRun records the end of a run.
func (m *Metrics) ObserveRun(elapsed time.Duration, finished time.Time) {
	if m == nil {
		return
	}
	m.RunDuration.Set(elapsed.Seconds())
	m.LastRunTimestamp.Set(float64(finished.Unix()))
}

// WriteTextfile atomically writes all collected metrics to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
