package ripple

import (
	"errors"
	"testing"
)

func TestMemoCachesValue(t *testing.T) {
	o := WrapObject(map[string]any{"x": 1})

	calls := 0
	m := NewMemo(func() int {
		calls++
		return o.Get("x").(int) * 2
	})

	if calls != 0 {
		t.Fatalf("memo computed eagerly, calls=%d", calls)
	}

	if m.Get() != 2 {
		t.Errorf("expected 2, got %d", m.Get())
	}
	if m.Get() != 2 || calls != 1 {
		t.Errorf("second read should be a cache hit, calls=%d", calls)
	}
}

func TestMemoInvalidation(t *testing.T) {
	o := WrapObject(map[string]any{"x": 1})

	calls := 0
	m := NewMemo(func() int {
		calls++
		return o.Get("x").(int) * 2
	})

	_ = m.Get()

	// Two writes before a read: still only one recompute.
	o.Set("x", 2)
	o.Set("x", 3)
	if m.Get() != 6 {
		t.Errorf("expected 6, got %d", m.Get())
	}
	if calls != 2 {
		t.Errorf("expected one recompute after invalidation, calls=%d", calls)
	}
}

func TestMemoChain(t *testing.T) {
	o := WrapObject(map[string]any{"x": 1})

	c1Calls := 0
	c1 := NewMemo(func() int {
		c1Calls++
		return o.Get("x").(int) * 2
	})
	c2 := NewMemo(func() int {
		return c1.Get() + 1
	})

	if c2.Get() != 3 {
		t.Fatalf("expected c2=3, got %d", c2.Get())
	}

	o.Set("x", 5)
	if c2.Get() != 11 {
		t.Errorf("expected c2=11 after x=5, got %d", c2.Get())
	}
	if c1Calls != 2 {
		t.Errorf("c1 should have recomputed exactly once more, calls=%d", c1Calls)
	}
}

func TestMemoPeekDoesNotSubscribe(t *testing.T) {
	o := WrapObject(map[string]any{"x": 1})
	m := NewMemo(func() int { return o.Get("x").(int) })

	listener := newTestListener()
	WithListener(listener, func() {
		if m.Peek() != 1 {
			t.Errorf("peek = %d", m.Peek())
		}
	})

	o.Set("x", 2)
	if listener.getDirtyCount() != 0 {
		t.Errorf("Peek should not subscribe, got %d notifications", listener.getDirtyCount())
	}
}

func TestMemoDirtyInsideBatch(t *testing.T) {
	o := WrapObject(map[string]any{"x": 1})
	m := NewMemo(func() int { return o.Get("x").(int) * 2 })
	_ = m.Get()

	Batch(func() {
		o.Set("x", 4)
		// The memo must not serve a stale cache mid-batch.
		if m.Get() != 8 {
			t.Errorf("stale memo inside batch: %d", m.Get())
		}
	})
}

func TestMemoCyclePanics(t *testing.T) {
	var m *Memo[int]
	m = NewMemo(func() int {
		return m.Get() + 1
	})

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected cycle panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrCycle) {
			t.Errorf("panic value should wrap ErrCycle, got %v", r)
		}
	}()
	_ = m.Get()
}
