package ripple

import (
	"sync"
	"sync/atomic"
)

// Effect is an eager reactive computation. It runs immediately on creation
// and re-runs whenever any dependency it read during its last run changes.
//
// Outside a batch, re-runs are synchronous with the triggering write. Inside
// a batch, the effect is queued and runs once when the batch flushes, no
// matter how many of its dependencies fired.
type Effect struct {
	id uint64

	// fn is the effect function to run.
	fn func() Cleanup

	// cleanup is the cleanup function from the last run.
	cleanup Cleanup

	// sources are the subscriber sets this effect joined during its last
	// run. Cleared and rebuilt on every run so the dependency set always
	// reflects exactly what the most recent run read.
	sources   []*depSet
	sourcesMu sync.Mutex

	// owner is the scope that disposes this effect, if any.
	owner *Owner

	// running is set for the duration of a run; a trigger landing mid-run
	// sets pending instead of recursing, and the effect runs once more
	// after the current run completes.
	running  atomic.Bool
	pending  atomic.Bool
	disposed atomic.Bool

	// name is an optional label for debug logging.
	name string
}

// MarkDirty re-runs the effect. Implements the Listener interface.
// Triggers against a disposed effect are no-ops.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() {
		return
	}
	if e.running.Load() {
		e.pending.Store(true)
		return
	}
	e.run()
}

// ID returns the unique identifier for this effect.
// Implements the Listener interface.
func (e *Effect) ID() uint64 {
	return e.id
}

// run executes the effect function, re-collecting dependencies from scratch.
// Writes made by fn against the effect's own dependencies coalesce into a
// single follow-up run.
func (e *Effect) run() {
	for {
		if e.disposed.Load() {
			return
		}
		e.pending.Store(false)

		if e.cleanup != nil {
			c := e.cleanup
			e.cleanup = nil
			c()
		}

		// Drop subscriptions from the previous run so dependencies that
		// were not read this time stop notifying.
		e.sourcesMu.Lock()
		for _, source := range e.sources {
			source.unsubscribe(e)
		}
		e.sources = e.sources[:0]
		e.sourcesMu.Unlock()

		statEffectRuns.Add(1)

		e.running.Store(true)
		func() {
			old := setCurrentListener(e)
			// A panic in fn must not leave this effect installed as the
			// current listener or marked as running.
			defer func() {
				setCurrentListener(old)
				e.running.Store(false)
			}()
			e.cleanup = e.fn()
		}()

		if !e.pending.Load() {
			return
		}
	}
}

// addSource records a subscriber set this effect joined.
// Called by the dependency store on tracked reads.
func (e *Effect) addSource(source *depSet) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	for _, s := range e.sources {
		if s == source {
			return
		}
	}
	e.sources = append(e.sources, source)
}

// Dispose permanently stops the effect: its cleanup runs, it is removed from
// every subscriber set, and further triggers are no-ops. Safe to call more
// than once.
func (e *Effect) Dispose() {
	if e.disposed.Swap(true) {
		return
	}

	if e.cleanup != nil {
		c := e.cleanup
		e.cleanup = nil
		c()
	}

	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = nil
	e.sourcesMu.Unlock()
}

// IsDisposed reports whether the effect has been disposed.
func (e *Effect) IsDisposed() bool {
	return e.disposed.Load()
}

// EffectOption configures an Effect.
type EffectOption interface {
	applyEffect(e *Effect)
}

type effectOptionFunc func(*Effect)

func (f effectOptionFunc) applyEffect(e *Effect) { f(e) }

// EffectName labels the effect for debug logging.
func EffectName(name string) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.name = name
	})
}

// CreateEffect creates and immediately runs a new effect. The effect re-runs
// whenever a handle property or memo it read changes. If fn returns a
// Cleanup, it is called before the next re-run and on disposal — use it to
// release subscriptions or timers opened inside the effect body.
//
// The returned effect's Dispose method is the disposer; when an Owner is
// current, the effect is also disposed with that owner.
//
//	e := ripple.CreateEffect(func() ripple.Cleanup {
//	    fmt.Println("count:", obj.Get("count"))
//	    return nil
//	})
//	defer e.Dispose()
func CreateEffect(fn func() Cleanup, opts ...EffectOption) *Effect {
	e := &Effect{
		id:    nextID(),
		fn:    fn,
		owner: getCurrentOwner(),
	}

	for _, opt := range opts {
		opt.applyEffect(e)
	}

	if e.owner != nil {
		e.owner.registerEffect(e)
	}

	e.run()

	return e
}

// OnCleanup registers fn to run when the current owner is disposed.
// With no current owner, fn is held by nothing and never runs; callers
// outside an owner scope should use an Effect cleanup instead.
func OnCleanup(fn func()) {
	if owner := getCurrentOwner(); owner != nil {
		owner.OnCleanup(fn)
	}
}
