package resource

import "time"

// Option configures a Resource. Options are applied before the first fetch
// starts, so retry and callback settings always cover every fetch including
// the initial one.
type Option[T any] func(*Resource[T])

// StaleTime sets how long ready data stays fresh; Fetch within the window is
// a no-op.
func StaleTime[T any](d time.Duration) Option[T] {
	return func(r *Resource[T]) {
		r.staleTime = d
	}
}

// RetryOnError sets how many times a failed fetch retries and the delay
// between attempts.
func RetryOnError[T any](count int, delay time.Duration) Option[T] {
	return func(r *Resource[T]) {
		r.retryCount = count
		r.retryDelay = delay
	}
}

// OnSuccess registers a callback invoked after each successful fetch.
func OnSuccess[T any](fn func(T)) Option[T] {
	return func(r *Resource[T]) {
		r.onSuccess = fn
	}
}

// OnError registers a callback invoked after a fetch exhausts its retries.
func OnError[T any](fn func(error)) Option[T] {
	return func(r *Resource[T]) {
		r.onError = fn
	}
}
