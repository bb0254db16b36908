package ripple

// Listener is anything that can be notified when a dependency changes.
// This interface is implemented by effects and memos, and by external
// integrations (bindings, watchers) that want raw change notifications.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies has changed.
	// For memos, this invalidates the cached value.
	// For effects, this re-runs the effect (or queues it inside a batch).
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication when a batch flushes.
	ID() uint64
}

// Cleanup is a function returned by effects to clean up resources.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()

// sourceTracker is implemented by computations that record which subscriber
// sets they joined during a run, so stale subscriptions can be torn down
// before the next run.
type sourceTracker interface {
	Listener
	addSource(*depSet)
}

// staleable is implemented by lazy computations (memos) whose invalidation is
// side-effect free. Inside a batch they are invalidated immediately instead of
// being queued, so reads within the batch never observe a stale cache.
type staleable interface {
	markStale()
}
