package ripple

import (
	"strconv"
	"sync"
)

// lengthKey is the dependency key for the sequence length. Structural
// changes (append, insert, remove) trigger it alongside the affected indices.
const lengthKey = "length"

// indexKey returns the dependency key for one element position.
func indexKey(i int) string {
	return strconv.Itoa(i)
}

// List is the reactive handle for a sequence target. Element reads register
// per-index dependencies; structural mutations notify the affected indices
// plus the length key, grouped so each subscriber runs once per operation.
type List struct {
	id uint64

	items []any
	mu    sync.RWMutex

	// deps maps index/length keys to subscriber sets.
	deps depMap
}

func newList(items []any) *List {
	return &List{
		id:    nextID(),
		items: items,
	}
}

// ID returns the unique identifier for this handle.
func (l *List) ID() uint64 {
	return l.id
}

// At returns the element at index i, subscribing the current listener to
// that position. Nested composites are wrapped lazily like Object properties.
// Out-of-range reads subscribe to the length key and return nil, so a later
// growth re-runs the reader.
func (l *List) At(i int) any {
	if i < 0 {
		return nil
	}

	l.mu.Lock()
	if i >= len(l.items) {
		l.mu.Unlock()
		l.deps.track(lengthKey)
		return nil
	}

	v := l.items[i]
	switch tv := v.(type) {
	case map[string]any:
		h := wrapMap(tv)
		l.items[i] = h
		v = h
	case []any:
		h := wrapSlice(tv)
		l.items[i] = h
		v = h
	}
	l.mu.Unlock()

	l.deps.track(indexKey(i))

	if acc, ok := v.(accessor); ok {
		return acc.getAny()
	}
	return v
}

// SetAt replaces the element at index i, notifying its subscribers if the
// value changed. Out-of-range writes are no-ops.
func (l *List) SetAt(i int, value any) {
	l.mu.Lock()
	if i < 0 || i >= len(l.items) {
		l.mu.Unlock()
		return
	}
	changed := !equalsAny(l.items[i], value)
	if changed {
		// At stores wrapped handles back; compare a raw composite against
		// its identity-cached handle before treating the write as a change.
		switch value.(type) {
		case map[string]any, []any:
			changed = !equalsAny(l.items[i], Wrap(value))
		}
	}
	if changed {
		l.items[i] = value
	}
	l.mu.Unlock()

	if changed {
		l.deps.trigger(indexKey(i))
	}
}

// Append adds elements to the end of the sequence, notifying the new index
// positions and the length key.
func (l *List) Append(values ...any) {
	if len(values) == 0 {
		return
	}

	l.mu.Lock()
	start := len(l.items)
	l.items = append(l.items, values...)
	end := len(l.items)
	l.mu.Unlock()

	Batch(func() {
		for i := start; i < end; i++ {
			l.deps.trigger(indexKey(i))
		}
		l.deps.trigger(lengthKey)
	})
}

// Insert places a value at index i, shifting later elements. i is clamped to
// [0, Len]. All shifted positions and the length key are notified.
func (l *List) Insert(i int, value any) {
	l.mu.Lock()
	if i < 0 {
		i = 0
	}
	if i > len(l.items) {
		i = len(l.items)
	}
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = value
	end := len(l.items)
	l.mu.Unlock()

	Batch(func() {
		for j := i; j < end; j++ {
			l.deps.trigger(indexKey(j))
		}
		l.deps.trigger(lengthKey)
	})
}

// RemoveAt deletes the element at index i, shifting later elements down.
// All positions from i through the old last index are notified, plus the
// length key. Out-of-range removals are no-ops.
func (l *List) RemoveAt(i int) {
	l.mu.Lock()
	if i < 0 || i >= len(l.items) {
		l.mu.Unlock()
		return
	}
	oldLen := len(l.items)
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.mu.Unlock()

	Batch(func() {
		for j := i; j < oldLen; j++ {
			l.deps.trigger(indexKey(j))
		}
		l.deps.trigger(lengthKey)
	})
}

// Len returns the element count, subscribing the current listener to the
// length key.
func (l *List) Len() int {
	l.deps.track(lengthKey)

	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Values returns all elements, subscribing the current listener to the
// length key and every index.
func (l *List) Values() []any {
	n := l.Len()
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = l.At(i)
	}
	return out
}

// Snapshot returns an untracked deep copy of the sequence's current state.
func (l *List) Snapshot() []any {
	l.mu.RLock()
	items := make([]any, len(l.items))
	copy(items, l.items)
	l.mu.RUnlock()

	out := make([]any, len(items))
	for i, v := range items {
		out[i] = snapshotValue(v)
	}
	return out
}
