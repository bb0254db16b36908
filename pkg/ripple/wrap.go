package ripple

import (
	"reflect"
	"sync"
)

// wrapCache memoizes handles by target identity so wrapping the same target
// twice returns the same handle instead of building a duplicate dependency
// graph. Keyed by the target's data pointer; the cached handle keeps the
// target alive, so an entry stays valid for as long as it exists.
var wrapCache sync.Map // uintptr | sliceKey -> *Object | *List

// sliceKey identifies a slice target. Two slices over the same backing array
// with different lengths are distinct targets, so length is part of the key.
type sliceKey struct {
	ptr uintptr
	len int
}

// Wrap makes a composite value reactive and returns its handle.
//
// Maps (map[string]any) wrap to *Object, slices ([]any) wrap to *List, and an
// already-wrapped handle is returned unchanged. Everything else — scalars,
// times, regexps, functions, channels, typed containers — is returned as-is:
// non-composite built-ins carry specialized internal behavior that a wrapper
// would corrupt.
//
// Wrapping is idempotent: the same target always yields the same handle.
func Wrap(target any) any {
	switch t := target.(type) {
	case nil:
		return nil
	case *Object:
		return t
	case *List:
		return t
	case map[string]any:
		return wrapMap(t)
	case []any:
		return wrapSlice(t)
	default:
		return target
	}
}

// WrapObject wraps a record target, creating an empty one when fields is nil.
func WrapObject(fields map[string]any) *Object {
	if fields == nil {
		return newObject(make(map[string]any))
	}
	return wrapMap(fields)
}

// WrapList wraps a sequence target, creating an empty one when items is nil.
func WrapList(items []any) *List {
	if items == nil {
		return newList([]any{})
	}
	return wrapSlice(items)
}

// Forget drops the identity-cache entry for a target. After Forget, wrapping
// the target again creates a fresh handle. Only needed by callers that wrap
// large numbers of short-lived targets and want the cache entry released.
func Forget(target any) {
	switch t := target.(type) {
	case map[string]any:
		if t != nil {
			wrapCache.Delete(reflect.ValueOf(t).Pointer())
		}
	case []any:
		if cap(t) > 0 {
			wrapCache.Delete(sliceKey{reflect.ValueOf(t).Pointer(), len(t)})
		}
	}
}

func wrapMap(m map[string]any) *Object {
	if m == nil {
		return newObject(make(map[string]any))
	}

	ptr := reflect.ValueOf(m).Pointer()
	if h, ok := wrapCache.Load(ptr); ok {
		if o, ok := h.(*Object); ok {
			return o
		}
	}

	o := newObject(m)
	if actual, loaded := wrapCache.LoadOrStore(ptr, o); loaded {
		if prev, ok := actual.(*Object); ok {
			return prev
		}
	}
	return o
}

func wrapSlice(s []any) *List {
	// All zero-capacity slices share one backing pointer, so they get no
	// identity cache entry.
	if cap(s) == 0 {
		return newList(s)
	}

	key := sliceKey{reflect.ValueOf(s).Pointer(), len(s)}
	if h, ok := wrapCache.Load(key); ok {
		if l, ok := h.(*List); ok {
			return l
		}
	}

	l := newList(s)
	if actual, loaded := wrapCache.LoadOrStore(key, l); loaded {
		if prev, ok := actual.(*List); ok {
			return prev
		}
	}
	return l
}
