// Package ripple is a fine-grained reactive-state runtime: plain maps and
// slices become observable handles whose property reads register
// dependencies automatically and whose writes re-run exactly the
// computations that read them.
//
// # Handles
//
// Wrap makes a composite value reactive. Wrapping is idempotent: the same
// target always returns the same handle.
//
//	user := ripple.WrapObject(map[string]any{"name": "Ada", "age": 36})
//	name := user.Get("name") // tracked when read inside a computation
//	user.Set("age", 37)      // notifies subscribers of "age" only
//
// Nested maps and slices are wrapped lazily on first read, so deep object
// graphs cost nothing until touched.
//
// # Effects
//
// CreateEffect registers an eager computation that re-runs when anything it
// read changes. Dependencies are re-collected on every run, so conditional
// reads subscribe to exactly what the last run touched.
//
//	e := ripple.CreateEffect(func() ripple.Cleanup {
//	    fmt.Println("age is", user.Get("age"))
//	    return nil
//	})
//	defer e.Dispose()
//
// # Memos
//
// NewMemo caches a derived value and recomputes it lazily: a dependency
// change only marks the memo dirty, and the next read recomputes. Memos
// chain — reading one memo from another links them through the same
// dependency store as plain properties. Object.Compute exposes a memo as an
// ordinary property.
//
// # Transactions
//
// Batch groups writes so each affected effect runs once, after the batch.
// Pause and Resume are the cross-function form of the same depth counter.
// Untracked reads state without subscribing.
//
// # Errors
//
// The engine never catches panics from user callbacks; they propagate to the
// caller that performed the triggering write. All internal bookkeeping
// (listener stack, depth counter, pending queue) is restored with defers, so
// a panic cannot corrupt tracking. Disposal is idempotent and triggers
// against disposed computations are silent no-ops.
//
// # Concurrency
//
// Handles and memos are safe for concurrent use. Dependency tracking state
// is per-goroutine: a computation's reads track only on the goroutine the
// computation runs on, and batches delimit writes on the calling goroutine.
package ripple
