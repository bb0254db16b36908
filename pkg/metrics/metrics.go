// Package metrics exposes the ripple engine counters as prometheus metrics.
//
// The collector reads the engine's atomic counters on scrape; it adds no
// overhead to the reactive hot path.
//
//	reg := prometheus.NewRegistry()
//	reg.MustRegister(metrics.NewCollector())
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ripple-state/ripple/pkg/ripple"
)

var (
	descEffectRuns = prometheus.NewDesc(
		"ripple_effect_runs_total",
		"Total number of effect executions, including initial runs.",
		nil, nil,
	)
	descMemoRecomputes = prometheus.NewDesc(
		"ripple_memo_recomputes_total",
		"Total number of memo computation runs.",
		nil, nil,
	)
	descTriggers = prometheus.NewDesc(
		"ripple_triggers_total",
		"Total number of dependency-key notifications.",
		nil, nil,
	)
	descFlushes = prometheus.NewDesc(
		"ripple_flushes_total",
		"Total number of non-empty pending-queue flushes.",
		nil, nil,
	)
	descBatches = prometheus.NewDesc(
		"ripple_batches_total",
		"Total number of top-level transactions entered.",
		nil, nil,
	)
)

// Collector implements prometheus.Collector over ripple.Stats.
type Collector struct{}

// NewCollector returns a collector for the engine counters.
func NewCollector() *Collector {
	return &Collector{}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descEffectRuns
	ch <- descMemoRecomputes
	ch <- descTriggers
	ch <- descFlushes
	ch <- descBatches
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := ripple.Stats()
	ch <- prometheus.MustNewConstMetric(descEffectRuns, prometheus.CounterValue, float64(s.EffectRuns))
	ch <- prometheus.MustNewConstMetric(descMemoRecomputes, prometheus.CounterValue, float64(s.MemoRecomputes))
	ch <- prometheus.MustNewConstMetric(descTriggers, prometheus.CounterValue, float64(s.Triggers))
	ch <- prometheus.MustNewConstMetric(descFlushes, prometheus.CounterValue, float64(s.Flushes))
	ch <- prometheus.MustNewConstMetric(descBatches, prometheus.CounterValue, float64(s.Batches))
}

var _ prometheus.Collector = (*Collector)(nil)
