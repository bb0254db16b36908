// Package resource manages asynchronous data fetching with reactive state.
//
// A Resource runs its fetcher on a background goroutine and publishes the
// outcome through a reactive object, so effects reading State, Data or Err
// re-run as the fetch progresses. Each fetch is traced with OpenTelemetry.
package resource

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ripple-state/ripple/pkg/ripple"
)

// State represents the current state of a resource.
type State int

const (
	Pending State = iota // Before the first fetch completes
	Loading              // Fetch in progress
	Ready                // Data successfully loaded
	Error                // Fetch failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Resource manages asynchronous data fetching and its reactive state.
type Resource[T any] struct {
	fetcher func(context.Context) (T, error)

	// obj carries the reactive properties: "state" (State), "err" (error)
	// and "version" (uint64, bumped on every data change). The typed value
	// itself lives in data under mu so Data can return a T.
	obj  *ripple.Object
	data T

	// Configuration, fixed by options before the first fetch starts.
	name       string
	staleTime  time.Duration
	retryCount int
	retryDelay time.Duration
	onSuccess  func(T)
	onError    func(error)

	lastFetch time.Time
	fetchID   uint64 // stale responses carry an old ID and are dropped
	version   uint64
	mu        sync.Mutex

	tracer trace.Tracer
}

// New creates a Resource with the given fetcher and starts the first fetch
// immediately. Options are applied before that fetch, so retry settings and
// callbacks cover it.
func New[T any](name string, fetcher func(context.Context) (T, error), opts ...Option[T]) *Resource[T] {
	r := &Resource[T]{
		fetcher: fetcher,
		name:    name,
		obj: ripple.WrapObject(map[string]any{
			"state":   Pending,
			"err":     nil,
			"version": uint64(0),
		}),
		tracer: otel.Tracer("ripple/resource"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Fetch()
	return r
}

// NewWithKey creates a Resource that refetches whenever the key computation's
// dependencies change. The key function runs under the resource's tracking,
// so reading reactive state inside it subscribes the refetch.
func NewWithKey[K comparable, T any](name string, key func() K, fetcher func(context.Context, K) (T, error), opts ...Option[T]) *Resource[T] {
	r := New(name, func(ctx context.Context) (T, error) {
		var k K
		ripple.Untracked(func() {
			k = key()
		})
		return fetcher(ctx, k)
	}, opts...)

	first := true
	ripple.CreateEffect(func() ripple.Cleanup {
		key()
		if first {
			// New already fetched.
			first = false
			return nil
		}
		r.Refetch()
		return nil
	}, ripple.EffectName("resource-key:"+name))

	return r
}

// State returns the current state, subscribing the caller.
func (r *Resource[T]) State() State {
	v := r.obj.Get("state")
	s, _ := v.(State)
	return s
}

// IsLoading reports whether a fetch has not yet produced a result.
func (r *Resource[T]) IsLoading() bool {
	s := r.State()
	return s == Loading || s == Pending
}

// IsReady reports whether data is loaded.
func (r *Resource[T]) IsReady() bool {
	return r.State() == Ready
}

// IsError reports whether the last fetch failed.
func (r *Resource[T]) IsError() bool {
	return r.State() == Error
}

// Data returns the last successfully fetched value, subscribing the caller
// to data changes.
func (r *Resource[T]) Data() T {
	_ = r.obj.Get("version")

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

// DataOr returns the data when ready, the fallback otherwise.
func (r *Resource[T]) DataOr(fallback T) T {
	if r.IsReady() {
		return r.Data()
	}
	return fallback
}

// Err returns the last fetch error, nil when none. Tracked.
func (r *Resource[T]) Err() error {
	v := r.obj.Get("err")
	err, _ := v.(error)
	return err
}

// Fetch triggers a fetch unless ready data is still fresh per StaleTime.
func (r *Resource[T]) Fetch() {
	r.mu.Lock()
	fresh := time.Since(r.lastFetch) < r.staleTime
	r.mu.Unlock()

	var ready bool
	ripple.Untracked(func() {
		ready = r.State() == Ready
	})
	if ready && fresh {
		return
	}
	r.Refetch()
}

// Refetch forces a fetch, bypassing freshness. A newer Refetch supersedes an
// in-flight one: the older fetch's result is discarded.
func (r *Resource[T]) Refetch() {
	r.mu.Lock()
	r.fetchID++
	id := r.fetchID
	r.mu.Unlock()

	ripple.Batch(func() {
		r.obj.Set("state", Loading)
		r.obj.Set("err", nil)
	})

	go r.fetch(id)
}

func (r *Resource[T]) fetch(id uint64) {
	ctx, span := r.tracer.Start(context.Background(), "resource.fetch",
		trace.WithAttributes(
			attribute.String("resource.name", r.name),
			attribute.Int64("resource.fetch_id", int64(id)),
		))
	defer span.End()

	var result T
	var err error

	attempts := 1 + r.retryCount
	for i := 0; i < attempts; i++ {
		if i > 0 {
			span.AddEvent("retry", trace.WithAttributes(attribute.Int("attempt", i+1)))
			time.Sleep(r.retryDelay)
		}
		if r.superseded(id) {
			span.AddEvent("superseded")
			return
		}
		result, err = r.fetcher(ctx)
		if err == nil {
			break
		}
	}

	r.mu.Lock()
	if r.fetchID != id {
		r.mu.Unlock()
		span.AddEvent("superseded")
		return
	}
	r.lastFetch = time.Now()
	if err == nil {
		r.data = result
		r.version++
		version := r.version
		r.mu.Unlock()

		ripple.Batch(func() {
			r.obj.Set("version", version)
			r.obj.Set("err", nil)
			r.obj.Set("state", Ready)
		})
		span.SetStatus(codes.Ok, "")
		if r.onSuccess != nil {
			r.onSuccess(result)
		}
		return
	}
	r.mu.Unlock()

	ripple.Batch(func() {
		r.obj.Set("err", err)
		r.obj.Set("state", Error)
	})
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if r.onError != nil {
		r.onError(err)
	}
}

func (r *Resource[T]) superseded(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetchID != id
}

// Invalidate marks the current data as stale so the next Fetch runs.
func (r *Resource[T]) Invalidate() {
	r.mu.Lock()
	r.lastFetch = time.Time{}
	r.mu.Unlock()
}

// Mutate applies an optimistic local update to the data without fetching.
func (r *Resource[T]) Mutate(fn func(T) T) {
	r.mu.Lock()
	r.data = fn(r.data)
	r.version++
	version := r.version
	r.mu.Unlock()

	r.obj.Set("version", version)
}
