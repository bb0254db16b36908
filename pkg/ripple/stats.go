package ripple

import "sync/atomic"

// Engine counters. Monotonic, process-wide. Exposed via Stats for
// observability integrations (see pkg/metrics for the prometheus collector).
var (
	statEffectRuns     atomic.Uint64
	statMemoRecomputes atomic.Uint64
	statTriggers       atomic.Uint64
	statFlushes        atomic.Uint64
	statBatches        atomic.Uint64
)

// StatsSnapshot is a point-in-time copy of the engine counters.
type StatsSnapshot struct {
	// EffectRuns is the total number of effect executions, including the
	// initial run at creation.
	EffectRuns uint64

	// MemoRecomputes is the total number of memo computation runs.
	MemoRecomputes uint64

	// Triggers is the total number of dependency-key notifications
	// (one per changed key per write, regardless of subscriber count).
	Triggers uint64

	// Flushes is the number of pending-queue flushes that ran at least
	// one listener.
	Flushes uint64

	// Batches is the number of top-level Batch/Pause transactions entered.
	Batches uint64
}

// Stats returns a snapshot of the engine counters.
func Stats() StatsSnapshot {
	return StatsSnapshot{
		EffectRuns:     statEffectRuns.Load(),
		MemoRecomputes: statMemoRecomputes.Load(),
		Triggers:       statTriggers.Load(),
		Flushes:        statFlushes.Load(),
		Batches:        statBatches.Load(),
	}
}
