package ripple

// Batch groups multiple writes into a single notification phase. All
// triggers within fn are collected, deduplicated by computation, and flushed
// once when the outermost batch completes — each affected effect runs
// exactly once, in first-triggered order, after fn returns.
//
// Batches nest: only the transition of the depth counter back to zero
// flushes. The counter decrement is deferred, so a panic inside fn cannot
// leave the engine permanently batched.
//
//	ripple.Batch(func() {
//	    user.Set("first", "Ada")
//	    user.Set("last", "Lovelace")
//	    user.Set("age", 36)
//	})
//	// Subscribers run once with all three changes applied.
func Batch(fn func()) {
	if getBatchDepth() == 0 {
		statBatches.Add(1)
	}
	incrementBatchDepth()

	defer func() {
		if decrementBatchDepth() {
			processPendingUpdates()
		}
	}()

	fn()
}

// Pause suspends effect notification until a matching Resume. Unlike Batch,
// Pause/Resume pairs need not be lexically scoped — a bulk load can Pause in
// one function and Resume in another. Pauses nest with Batch on the same
// depth counter.
func Pause() {
	if getBatchDepth() == 0 {
		statBatches.Add(1)
	}
	incrementBatchDepth()
}

// Resume ends one level of Pause. When the depth counter returns to zero and
// flush is true, the pending queue runs. With flush false the queue is
// preserved — pending work is never silently dropped — and runs on the next
// flush (a later Batch completing, Resume(true), or an explicit Flush).
//
// Resume with no matching Pause panics with a coded error wrapping
// ErrUnbalancedResume.
func Resume(flush bool) {
	ctx := getTrackingContext()
	if ctx.batchDepth == 0 {
		panic(unbalancedResumeError())
	}
	if decrementBatchDepth() && flush {
		processPendingUpdates()
	}
}

// Flush runs the pending queue now if no batch or pause is active.
// Pairs with Resume(false) when preserved work should run later.
func Flush() {
	if getBatchDepth() == 0 {
		processPendingUpdates()
	}
}

// processPendingUpdates deduplicates and notifies all pending listeners in
// first-triggered order.
func processPendingUpdates() {
	updates := drainPendingUpdates()
	if len(updates) == 0 {
		return
	}

	statFlushes.Add(1)

	seen := make(map[uint64]bool, len(updates))
	unique := make([]Listener, 0, len(updates))

	for _, listener := range updates {
		id := listener.ID()
		if !seen[id] {
			seen[id] = true
			unique = append(unique, listener)
		}
	}

	log().V(1).Info("flushing pending updates", "queued", len(updates), "unique", len(unique))

	for _, listener := range unique {
		listener.MarkDirty()
	}
}

// Untracked runs fn without registering any dependencies: property reads
// inside fn do not subscribe the current computation. Used to read reactive
// state without reacting to it.
//
//	ripple.CreateEffect(func() ripple.Cleanup {
//	    name := user.Get("name") // tracked
//	    ripple.Untracked(func() {
//	        audit.Append(name, clock.Get("now")) // "now" not tracked
//	    })
//	    return nil
//	})
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}

// Tx runs fn as a transaction. Alias for Batch, matching the transaction
// vocabulary used by callers that group multi-step mutations.
func Tx(fn func()) {
	Batch(fn)
}

// TxNamed runs fn as a named transaction, logging its boundaries at V(1)
// through the logger installed with SetLogger.
func TxNamed(name string, fn func()) {
	l := log().V(1)
	l.Info("tx start", "name", name)
	defer l.Info("tx end", "name", name)
	Batch(fn)
}
