package ripple

import (
	"regexp"
	"testing"
	"time"
)

func TestObjectBasic(t *testing.T) {
	o := WrapObject(map[string]any{"a": 1, "b": 2})

	if o.Get("a") != 1 {
		t.Errorf("expected a=1, got %v", o.Get("a"))
	}

	o.Set("a", 5)
	if o.Get("a") != 5 {
		t.Errorf("expected a=5, got %v", o.Get("a"))
	}

	if o.Len() != 2 {
		t.Errorf("expected 2 keys, got %d", o.Len())
	}
}

func TestWrapIdempotent(t *testing.T) {
	target := map[string]any{"x": 1}

	h1 := Wrap(target)
	h2 := Wrap(target)
	if h1 != h2 {
		t.Error("wrapping the same target twice should return the same handle")
	}

	o := h1.(*Object)
	if Wrap(o) != h1 {
		t.Error("wrapping a handle should return it unchanged")
	}
}

func TestWrapPassthrough(t *testing.T) {
	now := time.Now()
	if Wrap(now) != now {
		t.Error("time.Time should be returned unwrapped")
	}

	re := regexp.MustCompile("a+")
	if Wrap(re) != re {
		t.Error("*regexp.Regexp should be returned unwrapped")
	}

	if Wrap(42) != 42 {
		t.Error("scalars should be returned unwrapped")
	}

	ch := make(chan int)
	if Wrap(ch) != any(ch) {
		t.Error("channels should be returned unwrapped")
	}

	if Wrap(nil) != nil {
		t.Error("nil should be returned as nil")
	}
}

func TestObjectTracksReadProperty(t *testing.T) {
	o := WrapObject(map[string]any{"a": 1, "b": 2})
	listener := newTestListener()

	WithListener(listener, func() {
		_ = o.Get("a")
	})

	// Writing a different property must not notify.
	o.Set("b", 99)
	if listener.getDirtyCount() != 0 {
		t.Errorf("write to untracked property notified listener %d times", listener.getDirtyCount())
	}

	o.Set("a", 2)
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}
}

func TestObjectSameValueWriteIsNoop(t *testing.T) {
	o := WrapObject(map[string]any{"a": 1})
	listener := newTestListener()

	WithListener(listener, func() {
		_ = o.Get("a")
	})

	o.Set("a", 1)
	if listener.getDirtyCount() != 0 {
		t.Errorf("same-value write should not notify, got %d", listener.getDirtyCount())
	}
}

func TestObjectSameNestedMapWriteIsNoop(t *testing.T) {
	nested := map[string]any{"x": 1}
	o := WrapObject(map[string]any{"n": nested})

	runs := 0
	e := CreateEffect(func() Cleanup {
		_ = o.Get("n") // stores the wrapped handle back
		runs++
		return nil
	})
	defer e.Dispose()

	// The stored value is now the handle; rewriting the raw map it wraps
	// must still count as the same value.
	o.Set("n", nested)
	if runs != 1 {
		t.Errorf("re-setting the same map re-ran the reader, runs=%d", runs)
	}

	o.Set("n", map[string]any{"x": 1})
	if runs != 2 {
		t.Errorf("setting a different map should re-run the reader, runs=%d", runs)
	}
}

func TestObjectNewKeyNotifiesIteration(t *testing.T) {
	o := WrapObject(map[string]any{})
	listener := newTestListener()

	WithListener(listener, func() {
		_ = o.Keys()
	})

	o.Set("fresh", 1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("new key should notify iteration subscriber once, got %d", listener.getDirtyCount())
	}

	// Overwriting an existing key does not change the key set.
	o.Set("fresh", 2)
	if listener.getDirtyCount() != 1 {
		t.Errorf("overwrite should not notify iteration subscriber, got %d", listener.getDirtyCount())
	}
}

func TestObjectDelete(t *testing.T) {
	o := WrapObject(map[string]any{"a": 1})
	keyListener := newTestListener()
	lenListener := newTestListener()

	WithListener(keyListener, func() { _ = o.Get("a") })
	WithListener(lenListener, func() { _ = o.Len() })

	o.Delete("a")
	if o.Has("a") {
		t.Error("key should be gone after Delete")
	}
	if keyListener.getDirtyCount() != 1 {
		t.Errorf("delete should notify key subscriber once, got %d", keyListener.getDirtyCount())
	}
	if lenListener.getDirtyCount() != 1 {
		t.Errorf("delete should notify length subscriber once, got %d", lenListener.getDirtyCount())
	}

	// Deleting a missing key is a no-op.
	o.Delete("a")
	if keyListener.getDirtyCount() != 1 {
		t.Errorf("deleting a missing key notified, got %d", keyListener.getDirtyCount())
	}
}

func TestObjectNestedLazyWrap(t *testing.T) {
	o := WrapObject(map[string]any{
		"profile": map[string]any{"city": "Oslo"},
	})

	v := o.Get("profile")
	nested, ok := v.(*Object)
	if !ok {
		t.Fatalf("nested map should come back wrapped, got %T", v)
	}

	// Same handle on repeated reads.
	if o.Get("profile") != v {
		t.Error("repeated reads should return the same nested handle")
	}

	listener := newTestListener()
	WithListener(listener, func() {
		_ = nested.Get("city")
	})

	nested.Set("city", "Bergen")
	if listener.getDirtyCount() != 1 {
		t.Errorf("nested write should notify, got %d", listener.getDirtyCount())
	}
}

func TestObjectSnapshot(t *testing.T) {
	o := WrapObject(map[string]any{
		"name": "Ada",
		"tags": []any{"x", "y"},
	})
	// Force lazy wrap of the nested slice.
	_ = o.Get("tags")

	listener := newTestListener()
	var snap map[string]any
	WithListener(listener, func() {
		snap = o.Snapshot()
	})

	if snap["name"] != "Ada" {
		t.Errorf("snapshot name = %v", snap["name"])
	}
	tags, ok := snap["tags"].([]any)
	if !ok || len(tags) != 2 {
		t.Fatalf("snapshot tags = %#v", snap["tags"])
	}

	// Snapshot must not subscribe.
	o.Set("name", "Grace")
	if listener.getDirtyCount() != 0 {
		t.Errorf("snapshot should not track, got %d notifications", listener.getDirtyCount())
	}
}

func TestObjectComputeProperty(t *testing.T) {
	o := WrapObject(map[string]any{"price": 10, "qty": 3})
	calls := 0
	o.Compute("total", func() any {
		calls++
		return o.Get("price").(int) * o.Get("qty").(int)
	})

	if o.Get("total") != 30 {
		t.Errorf("expected total=30, got %v", o.Get("total"))
	}
	if o.Get("total") != 30 || calls != 1 {
		t.Errorf("second read should hit the cache, calls=%d", calls)
	}

	o.Set("qty", 5)
	if o.Get("total") != 50 {
		t.Errorf("expected total=50 after qty change, got %v", o.Get("total"))
	}
	if calls != 2 {
		t.Errorf("expected exactly one recompute, calls=%d", calls)
	}
}

func TestComputedPropertyNotifiesReaders(t *testing.T) {
	o := WrapObject(map[string]any{"n": 2})
	o.Compute("double", func() any { return o.Get("n").(int) * 2 })

	var seen []int
	e := CreateEffect(func() Cleanup {
		seen = append(seen, o.Get("double").(int))
		return nil
	})
	defer e.Dispose()

	if len(seen) != 1 || seen[0] != 4 {
		t.Fatalf("expected initial read 4, got %v", seen)
	}

	o.Set("n", 10)
	if len(seen) != 2 || seen[1] != 20 {
		t.Errorf("expected effect rerun with 20, got %v", seen)
	}
}
