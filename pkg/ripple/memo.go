package ripple

import (
	"sync"
	"sync/atomic"
)

// accessor lets Object.Get and snapshots read a Memo without knowing its
// type parameter.
type accessor interface {
	getAny() any
	peekAny() any
}

// Memo is a cached derived computation. It tracks its own dependencies
// exactly like an Effect, but lazily: when a dependency changes, the memo
// only marks itself dirty, and the value is recomputed on the next read.
//
// Memos are also sources themselves: reading a memo from inside another
// computation subscribes that computation to the memo, so chains of derived
// values invalidate transitively and recompute depth-first, on demand.
type Memo[T any] struct {
	id uint64

	// subs are the computations subscribed to this memo's value.
	subs depSet

	// compute derives the memo's value.
	compute func() T

	// value is the cached computed value.
	value   T
	valueMu sync.RWMutex

	// valid is false when a dependency has fired since the last
	// recomputation; the next read recomputes.
	valid atomic.Bool

	// sources are the subscriber sets this memo joined during its last
	// computation. Rebuilt on every recompute.
	sources   []*depSet
	sourcesMu sync.Mutex

	// computing guards against a derivation reading itself.
	computing atomic.Bool
}

// NewMemo creates a new memo with the given computation function.
// The computation does not run immediately; it runs lazily on first read.
func NewMemo[T any](compute func() T) *Memo[T] {
	return &Memo[T]{
		id:      nextID(),
		compute: compute,
	}
}

// Get returns the memo's value, recomputing it if a dependency changed since
// the last computation, and subscribes the current listener to this memo.
func (m *Memo[T]) Get() T {
	m.subs.track()

	if !m.valid.Load() {
		m.recompute()
	}

	m.valueMu.RLock()
	defer m.valueMu.RUnlock()
	return m.value
}

// Peek returns the memo's value without subscribing.
// Still recomputes if the cache is stale.
func (m *Memo[T]) Peek() T {
	if !m.valid.Load() {
		m.recompute()
	}

	m.valueMu.RLock()
	defer m.valueMu.RUnlock()
	return m.value
}

// MarkDirty invalidates the cache and propagates dirtiness to subscribers.
// Implements the Listener interface. The propagation is itself lazy: a
// dependent memo only flips its flag, and a dependent effect re-runs (or is
// queued) through the ordinary notification path.
func (m *Memo[T]) MarkDirty() {
	if m.valid.CompareAndSwap(true, false) {
		m.subs.notify()
	}
}

// markStale implements staleable: inside a batch the memo is invalidated
// immediately rather than queued, so reads within the batch see fresh values.
func (m *Memo[T]) markStale() {
	m.MarkDirty()
}

// ID returns the unique identifier for this memo.
// Implements the Listener interface.
func (m *Memo[T]) ID() uint64 {
	return m.id
}

// addSource records a subscriber set this memo joined during computation.
func (m *Memo[T]) addSource(source *depSet) {
	m.sourcesMu.Lock()
	defer m.sourcesMu.Unlock()

	for _, s := range m.sources {
		if s == source {
			return
		}
	}
	m.sources = append(m.sources, source)
}

// getAny implements accessor.
func (m *Memo[T]) getAny() any {
	return m.Get()
}

// peekAny implements accessor.
func (m *Memo[T]) peekAny() any {
	return m.Peek()
}

// recompute runs the derivation, re-collecting dependencies from scratch.
// A derivation that re-enters itself (a circular computed graph) panics with
// a coded error wrapping ErrCycle.
func (m *Memo[T]) recompute() {
	if m.computing.Swap(true) {
		panic(cycleError(m.id))
	}
	defer m.computing.Store(false)

	m.sourcesMu.Lock()
	for _, source := range m.sources {
		source.unsubscribe(m)
	}
	m.sources = m.sources[:0]
	m.sourcesMu.Unlock()

	statMemoRecomputes.Add(1)

	var newValue T
	func() {
		old := setCurrentListener(m)
		defer setCurrentListener(old)
		newValue = m.compute()
	}()

	m.valueMu.Lock()
	m.value = newValue
	m.valueMu.Unlock()

	m.valid.Store(true)
}

// Ensure Memo participates in source tracking and object properties.
var (
	_ sourceTracker = (*Memo[int])(nil)
	_ staleable     = (*Memo[int])(nil)
	_ accessor      = (*Memo[int])(nil)
)

// Effect participates in source tracking as well.
var _ sourceTracker = (*Effect)(nil)
