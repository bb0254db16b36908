package ripple

import (
	"sync"
	"testing"
)

func TestWithListenerRestores(t *testing.T) {
	l1 := newTestListener()
	l2 := newTestListener()

	WithListener(l1, func() {
		if getCurrentListener() != Listener(l1) {
			t.Error("l1 not installed")
		}
		WithListener(l2, func() {
			if getCurrentListener() != Listener(l2) {
				t.Error("l2 not installed")
			}
		})
		if getCurrentListener() != Listener(l1) {
			t.Error("l1 not restored after nested listener")
		}
	})

	if getCurrentListener() != nil {
		t.Error("listener not cleared after WithListener")
	}
}

func TestTrackingIsPerGoroutine(t *testing.T) {
	o := WrapObject(map[string]any{"a": 1})
	listener := newTestListener()

	WithListener(listener, func() {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Reads on another goroutine must not subscribe this
			// goroutine's listener.
			_ = o.Get("a")
		}()
		wg.Wait()
	})

	o.Set("a", 2)
	if listener.getDirtyCount() != 0 {
		t.Errorf("cross-goroutine read leaked a subscription, got %d", listener.getDirtyCount())
	}
}

func TestBatchDepthIsPerGoroutine(t *testing.T) {
	done := make(chan struct{})

	Pause()
	go func() {
		defer close(done)
		if getBatchDepth() != 0 {
			t.Error("batch depth leaked across goroutines")
		}
	}()
	<-done
	Resume(false)
}

func TestStatsCounters(t *testing.T) {
	before := Stats()

	o := WrapObject(map[string]any{"a": 1})
	e := CreateEffect(func() Cleanup { _ = o.Get("a"); return nil })
	defer e.Dispose()

	Batch(func() {
		o.Set("a", 2)
	})

	m := NewMemo(func() int { return o.Get("a").(int) })
	_ = m.Get()

	after := Stats()
	if after.EffectRuns < before.EffectRuns+2 {
		t.Errorf("effect runs not counted: %d -> %d", before.EffectRuns, after.EffectRuns)
	}
	if after.Triggers <= before.Triggers {
		t.Errorf("triggers not counted: %d -> %d", before.Triggers, after.Triggers)
	}
	if after.Batches <= before.Batches {
		t.Errorf("batches not counted: %d -> %d", before.Batches, after.Batches)
	}
	if after.Flushes <= before.Flushes {
		t.Errorf("flushes not counted: %d -> %d", before.Flushes, after.Flushes)
	}
	if after.MemoRecomputes <= before.MemoRecomputes {
		t.Errorf("memo recomputes not counted: %d -> %d", before.MemoRecomputes, after.MemoRecomputes)
	}
}

func TestNextIDIncreases(t *testing.T) {
	a := nextID()
	b := nextID()
	if a == 0 || b <= a {
		t.Errorf("ids must be non-zero and increasing, got %d then %d", a, b)
	}
}

func TestForgetReleasesIdentity(t *testing.T) {
	target := map[string]any{"x": 1}

	h1 := Wrap(target)
	Forget(target)
	h2 := Wrap(target)

	if h1 == h2 {
		t.Error("Forget should drop the identity-cache entry")
	}
}
