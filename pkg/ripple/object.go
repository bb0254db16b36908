package ripple

import (
	"sort"
	"sync"
)

// iterateKey is the synthetic dependency key for operations that observe the
// key set as a whole (Keys, Len). Adding or removing a key triggers it.
const iterateKey = "\x00iterate"

// Object is the reactive handle for a record target. Property reads register
// the currently running computation as a subscriber of that property;
// property writes notify the subscribers of exactly that property.
//
// Nested composite values are wrapped lazily on first read, so arbitrary
// depth costs nothing until touched.
type Object struct {
	id uint64

	// fields holds the target's properties. Nested composites are replaced
	// by their handles on first read; computed properties hold a *Memo.
	fields map[string]any
	mu     sync.RWMutex

	// deps maps property name to its subscriber set.
	deps depMap
}

func newObject(fields map[string]any) *Object {
	return &Object{
		id:     nextID(),
		fields: fields,
	}
}

// ID returns the unique identifier for this handle.
func (o *Object) ID() uint64 {
	return o.id
}

// Get returns the value of a property and subscribes the current listener to
// it. A nested map or slice value is wrapped on first read and the handle is
// stored back, so repeated reads return the same handle. A computed property
// (see Compute) returns its cached or freshly derived value.
func (o *Object) Get(key string) any {
	o.deps.track(key)

	o.mu.Lock()
	v, ok := o.fields[key]
	if ok {
		switch tv := v.(type) {
		case map[string]any:
			h := wrapMap(tv)
			o.fields[key] = h
			v = h
		case []any:
			h := wrapSlice(tv)
			o.fields[key] = h
			v = h
		}
	}
	o.mu.Unlock()

	if acc, ok := v.(accessor); ok {
		return acc.getAny()
	}
	return v
}

// Set updates a property and notifies its subscribers if the value changed.
// Writing an equal value is a no-op. Creating a new key also notifies
// iteration subscribers (Keys, Len).
func (o *Object) Set(key string, value any) {
	o.mu.Lock()
	old, existed := o.fields[key]
	changed := !existed || !equalsAny(old, value)
	if changed && existed {
		// Get stores wrapped handles back, so rewriting the same raw map or
		// slice must compare against its identity-cached handle.
		switch value.(type) {
		case map[string]any, []any:
			changed = !equalsAny(old, Wrap(value))
		}
	}
	if changed {
		o.fields[key] = value
	}
	o.mu.Unlock()

	if !changed {
		return
	}

	if existed {
		o.deps.trigger(key)
		return
	}
	// A new key fires two dependency keys; group them so a computation
	// subscribed to both runs once.
	Batch(func() {
		o.deps.trigger(key)
		o.deps.trigger(iterateKey)
	})
}

// Delete removes a property, notifying its subscribers and iteration
// subscribers. Deleting a missing key is a no-op.
func (o *Object) Delete(key string) {
	o.mu.Lock()
	_, existed := o.fields[key]
	if existed {
		delete(o.fields, key)
	}
	o.mu.Unlock()

	if !existed {
		return
	}
	Batch(func() {
		o.deps.trigger(key)
		o.deps.trigger(iterateKey)
	})
}

// Has reports whether a property exists, subscribing the current listener
// to that property.
func (o *Object) Has(key string) bool {
	o.deps.track(key)

	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.fields[key]
	return ok
}

// Keys returns the property names in sorted order, subscribing the current
// listener to key-set changes.
func (o *Object) Keys() []string {
	o.deps.track(iterateKey)

	o.mu.RLock()
	keys := make([]string, 0, len(o.fields))
	for k := range o.fields {
		keys = append(keys, k)
	}
	o.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Len returns the number of properties, subscribing the current listener to
// key-set changes.
func (o *Object) Len() int {
	o.deps.track(iterateKey)

	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.fields)
}

// Compute installs a derived property. Reading the key returns the memo's
// value through the ordinary tracking path, so subscribers of the key are
// re-run when the derivation's own dependencies change — computed properties
// ride the same dependency store as plain ones.
func (o *Object) Compute(key string, fn func() any) *Memo[any] {
	m := NewMemo(fn)
	o.Set(key, m)
	return m
}

// Snapshot returns an untracked deep copy of the target's current state.
// Handles are unwrapped back to plain maps and slices; computed properties
// are materialized to their current value.
func (o *Object) Snapshot() map[string]any {
	o.mu.RLock()
	fields := make(map[string]any, len(o.fields))
	for k, v := range o.fields {
		fields[k] = v
	}
	o.mu.RUnlock()

	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = snapshotValue(v)
	}
	return out
}

// snapshotValue materializes one value for a snapshot without tracking.
func snapshotValue(v any) any {
	switch tv := v.(type) {
	case *Object:
		return tv.Snapshot()
	case *List:
		return tv.Snapshot()
	case map[string]any:
		m := make(map[string]any, len(tv))
		for k, x := range tv {
			m[k] = snapshotValue(x)
		}
		return m
	case []any:
		s := make([]any, len(tv))
		for i, x := range tv {
			s[i] = snapshotValue(x)
		}
		return s
	case accessor:
		return tv.peekAny()
	default:
		return v
	}
}
