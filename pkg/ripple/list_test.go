package ripple

import "testing"

func TestListBasic(t *testing.T) {
	l := WrapList([]any{"a", "b", "c"})

	if l.Len() != 3 {
		t.Errorf("expected len 3, got %d", l.Len())
	}
	if l.At(1) != "b" {
		t.Errorf("expected b, got %v", l.At(1))
	}

	l.SetAt(1, "B")
	if l.At(1) != "B" {
		t.Errorf("expected B, got %v", l.At(1))
	}
}

func TestListIndexTracking(t *testing.T) {
	l := WrapList([]any{1, 2, 3})
	listener := newTestListener()

	WithListener(listener, func() {
		_ = l.At(0)
	})

	// Writing a different index must not notify.
	l.SetAt(2, 30)
	if listener.getDirtyCount() != 0 {
		t.Errorf("write to untracked index notified %d times", listener.getDirtyCount())
	}

	l.SetAt(0, 10)
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}

	// Same-value write is a no-op.
	l.SetAt(0, 10)
	if listener.getDirtyCount() != 1 {
		t.Errorf("same-value write notified, got %d", listener.getDirtyCount())
	}
}

func TestListAppendNotifiesLength(t *testing.T) {
	l := WrapList([]any{1})

	lengths := []int{}
	e := CreateEffect(func() Cleanup {
		lengths = append(lengths, l.Len())
		return nil
	})
	defer e.Dispose()

	l.Append(2, 3)
	if len(lengths) != 2 || lengths[1] != 3 {
		t.Errorf("append should notify length subscriber once, got %v", lengths)
	}
}

func TestListRemoveAtShifts(t *testing.T) {
	l := WrapList([]any{"a", "b", "c"})

	runs := 0
	var last any
	e := CreateEffect(func() Cleanup {
		runs++
		last = l.At(1)
		return nil
	})
	defer e.Dispose()

	l.RemoveAt(0)
	if runs != 2 || last != "c" {
		t.Errorf("shifted index should re-run reader once: runs=%d last=%v", runs, last)
	}
}

func TestListInsert(t *testing.T) {
	l := WrapList([]any{"a", "c"})
	l.Insert(1, "b")

	vals := l.Snapshot()
	if len(vals) != 3 || vals[0] != "a" || vals[1] != "b" || vals[2] != "c" {
		t.Errorf("insert result = %v", vals)
	}

	// Clamped out-of-range insert appends.
	l.Insert(99, "d")
	if l.At(3) != "d" {
		t.Errorf("expected clamped insert at end, got %v", l.At(3))
	}
}

func TestListSameNestedSliceWriteIsNoop(t *testing.T) {
	inner := make([]any, 1, 2)
	inner[0] = 1
	l := WrapList([]any{inner})

	runs := 0
	e := CreateEffect(func() Cleanup {
		_ = l.At(0) // stores the wrapped handle back
		runs++
		return nil
	})
	defer e.Dispose()

	l.SetAt(0, inner)
	if runs != 1 {
		t.Errorf("re-setting the same slice re-ran the reader, runs=%d", runs)
	}
}

func TestWrapSlicesWithSharedBackingAreDistinct(t *testing.T) {
	base := []any{1, 2, 3}

	a := WrapList(base[:1])
	b := WrapList(base[:2])

	if a == b {
		t.Fatal("slices of different lengths over one array share a handle")
	}
	if a.Len() != 1 || b.Len() != 2 {
		t.Errorf("lens = %d, %d", a.Len(), b.Len())
	}
}

func TestListOutOfRangeReadTracksGrowth(t *testing.T) {
	l := WrapList([]any{})

	var seen []any
	e := CreateEffect(func() Cleanup {
		seen = append(seen, l.At(0))
		return nil
	})
	defer e.Dispose()

	if len(seen) != 1 || seen[0] != nil {
		t.Fatalf("expected initial nil read, got %v", seen)
	}

	l.Append("first")
	if len(seen) != 2 || seen[1] != "first" {
		t.Errorf("growth should re-run out-of-range reader, got %v", seen)
	}
}

func TestListNestedLazyWrap(t *testing.T) {
	l := WrapList([]any{map[string]any{"n": 1}})

	v := l.At(0)
	nested, ok := v.(*Object)
	if !ok {
		t.Fatalf("nested map in list should come back wrapped, got %T", v)
	}
	if l.At(0) != v {
		t.Error("repeated reads should return the same nested handle")
	}

	runs := 0
	e := CreateEffect(func() Cleanup {
		runs++
		_ = nested.Get("n")
		return nil
	})
	defer e.Dispose()

	nested.Set("n", 2)
	if runs != 2 {
		t.Errorf("nested handle write should re-run effect, runs=%d", runs)
	}
}

func TestListStructuralOpsAreGrouped(t *testing.T) {
	l := WrapList([]any{1, 2, 3})

	runs := 0
	e := CreateEffect(func() Cleanup {
		runs++
		// Depends on length and every index.
		_ = l.Values()
		return nil
	})
	defer e.Dispose()

	l.RemoveAt(0)
	if runs != 2 {
		t.Errorf("structural op should run subscriber once, runs=%d", runs)
	}
}
