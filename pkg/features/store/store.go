// Package store provides named, process-wide reactive stores built on
// ripple handles. Stores are the bulk-load consumer of the engine's
// transaction control: Load populates many properties under a single
// pause/resume pair so watchers run once.
package store

import (
	"sync"

	"github.com/ripple-state/ripple/pkg/ripple"
)

// registry holds named stores. LoadOrStore keeps Named idempotent under
// concurrent first access.
var registry sync.Map // string -> *Store

// Store wraps a reactive object with bulk-load and watch helpers.
type Store struct {
	name string
	obj  *ripple.Object
}

// New creates an anonymous store with the given initial state.
func New(initial map[string]any) *Store {
	return &Store{obj: ripple.WrapObject(initial)}
}

// Named returns the process-wide store with the given name, creating it
// empty on first access. The same name always returns the same store.
func Named(name string) *Store {
	if s, ok := registry.Load(name); ok {
		return s.(*Store)
	}
	s := &Store{name: name, obj: ripple.WrapObject(nil)}
	if actual, loaded := registry.LoadOrStore(name, s); loaded {
		return actual.(*Store)
	}
	return s
}

// Name returns the store's registry name, empty for anonymous stores.
func (s *Store) Name() string {
	return s.name
}

// Object returns the underlying reactive handle for direct use.
func (s *Store) Object() *ripple.Object {
	return s.obj
}

// Get reads a property, subscribing the current computation.
func (s *Store) Get(key string) any {
	return s.obj.Get(key)
}

// Set writes a property, notifying its subscribers.
func (s *Store) Set(key string, value any) {
	s.obj.Set(key, value)
}

// Update rewrites a property from its current value without subscribing.
func (s *Store) Update(key string, fn func(any) any) {
	var old any
	ripple.Untracked(func() {
		old = s.obj.Get(key)
	})
	s.obj.Set(key, fn(old))
}

// Load bulk-populates the store. All writes land under one pause/resume
// pair, so every affected watcher runs exactly once, after the load.
func (s *Store) Load(values map[string]any) {
	ripple.Pause()
	defer ripple.Resume(true)

	for k, v := range values {
		s.obj.Set(k, v)
	}
}

// Snapshot returns an untracked deep copy of the store's state.
func (s *Store) Snapshot() map[string]any {
	return s.obj.Snapshot()
}

// Watch runs fn with the current value of key now and after every change.
// Returns a disposer.
func (s *Store) Watch(key string, fn func(value any)) func() {
	e := ripple.CreateEffect(func() ripple.Cleanup {
		fn(s.obj.Get(key))
		return nil
	}, ripple.EffectName("store-watch:"+key))
	return e.Dispose
}
