package initorch

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Orchestrator constructs components exactly once, in dependency order.
//
// It provides:
// 1) memoized depth-first resolution with cycle detection
// 2) blocking and launched (background) execution modes
// 3) an await-all barrier over launched initializations
//
// Orchestrators are constructed explicitly and passed down; there is no
// package-level instance. A fresh orchestrator starts with an empty cache.
type Orchestrator struct {
	registry *Registry

	// sem serializes all resolution activity, blocking or launched, so the
	// cache observes at most one construction per identity. Acquire honors
	// the caller context: a launched job waiting for its turn can be
	// cancelled without stalling its goroutine forever.
	sem *semaphore.Weighted

	mu    sync.RWMutex
	cache map[ID]any

	jobs Jobs

	eagerMu sync.RWMutex
	eager   map[ID]struct{}
}

func New(registry *Registry) (*Orchestrator, error) {
	if registry == nil {
		return nil, fmt.Errorf("new orchestrator: registry is nil")
	}
	return &Orchestrator{
		registry: registry,
		sem:      semaphore.NewWeighted(1),
		cache:    make(map[ID]any),
		eager:    make(map[ID]struct{}),
	}, nil
}

// Resolve constructs or returns the cached value for id. Dependencies are
// resolved depth-first in declared order, each exactly once for the
// orchestrator's lifetime regardless of how many concurrent callers request
// it. A cycle anywhere in the chain aborts the call with a CycleError; a
// lookup or Create failure aborts it with an InitError and leaves the
// identity uncached, while dependencies already constructed stay cached.
func (o *Orchestrator) Resolve(ctx context.Context, id ID) (any, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	o.mu.RLock()
	cached, ok := o.cache[id]
	o.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer o.sem.Release(1)

	return o.resolve(ctx, id, newResolveState())
}

// Launch schedules Resolve(id) as a background job tracked by the await-all
// barrier. The caller gets no value back; the result is observable through
// Resolved or a later Resolve, and any failure surfaces from WaitAll.
func (o *Orchestrator) Launch(ctx context.Context, id ID) {
	o.jobs.Launch(ctx, func(ctx context.Context) error {
		_, err := o.Resolve(ctx, id)
		return err
	})
}

// Initialize runs one discovery batch in order: sync entries resolve
// sequentially on the calling goroutine and abort the batch on first error,
// async entries are launched as tracked jobs. Each dispatched entry is
// recorded as eager, whether or not its construction has completed.
func (o *Orchestrator) Initialize(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		if err := validateID(e.ID); err != nil {
			return fmt.Errorf("initialize batch: %w", err)
		}
	}

	for _, e := range entries {
		o.eagerMu.Lock()
		o.eager[e.ID] = struct{}{}
		o.eagerMu.Unlock()

		switch e.Kind {
		case KindAsync:
			o.Launch(ctx, e.ID)
		default:
			if _, err := o.Resolve(ctx, e.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// DiscoverAndInitialize obtains a batch from d and runs Initialize on it.
func (o *Orchestrator) DiscoverAndInitialize(ctx context.Context, d Discoverer) error {
	if d == nil {
		return fmt.Errorf("discover and initialize: discoverer is nil")
	}
	entries, err := d.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover components: %w", err)
	}
	return o.Initialize(ctx, entries)
}

// IsEager reports whether id was dispatched by a bulk-initialization batch.
// It consults the eager record, not the cache: a launched component still
// under construction is eager, a lazily Resolved component is not.
func (o *Orchestrator) IsEager(id ID) bool {
	o.eagerMu.RLock()
	defer o.eagerMu.RUnlock()
	_, ok := o.eager[id]
	return ok
}

// Resolved returns a cached value without triggering construction.
func (o *Orchestrator) Resolved(id ID) (any, bool) {
	if validateID(id) != nil {
		return nil, false
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.cache[id]
	return v, ok
}

// WaitAll blocks until every launched initialization reaches a terminal
// state, then clears the tracked batch. The first job failure is returned
// as an AwaitError; sibling jobs keep running to completion either way.
func (o *Orchestrator) WaitAll(ctx context.Context) error {
	return o.jobs.Wait(ctx)
}

// AllDone reports whether no launched initialization is still running.
func (o *Orchestrator) AllDone() bool {
	return o.jobs.AllDone()
}

// WhenDone waits for all launched initializations and then runs fn on the
// calling goroutine. fn does not run if the wait fails.
func (o *Orchestrator) WhenDone(ctx context.Context, fn func()) error {
	if err := o.jobs.Wait(ctx); err != nil {
		return err
	}
	fn()
	return nil
}

// resolveState is the in-progress set of one top-level resolution. It is
// never shared across top-level calls; the ordered stack lets cycle errors
// report the full chain.
type resolveState struct {
	stack    []ID
	visiting map[ID]struct{}
}

func newResolveState() *resolveState {
	return &resolveState{visiting: make(map[ID]struct{})}
}

func (s *resolveState) push(id ID) {
	s.stack = append(s.stack, id)
	s.visiting[id] = struct{}{}
}

func (s *resolveState) pop() {
	last := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	delete(s.visiting, last)
}

func (s *resolveState) cyclePath(id ID) []ID {
	for i := range s.stack {
		if s.stack[i] == id {
			path := append([]ID(nil), s.stack[i:]...)
			return append(path, id)
		}
	}
	return []ID{id}
}

// boundResolver exposes resolution to Create callbacks within the lock and
// in-progress state of the resolution already underway, so a component may
// resolve identities beyond its declared deps without deadlock and with
// cycle detection intact.
type boundResolver struct {
	o     *Orchestrator
	state *resolveState
}

func (r boundResolver) Resolve(ctx context.Context, id ID) (any, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return r.o.resolve(ctx, id, r.state)
}

func (o *Orchestrator) resolve(ctx context.Context, id ID, state *resolveState) (any, error) {
	o.mu.RLock()
	cached, ok := o.cache[id]
	o.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if _, inProgress := state.visiting[id]; inProgress {
		return nil, CycleError{Path: state.cyclePath(id)}
	}
	state.push(id)
	defer state.pop()

	init, ok := o.registry.lookup(id)
	if !ok {
		return nil, InitError{ID: id, Err: NotRegisteredError{ID: id}}
	}

	for _, dep := range init.deps {
		if _, err := o.resolve(ctx, dep, state); err != nil {
			return nil, fmt.Errorf("resolve dependency %s for %s: %w", dep, id, err)
		}
	}

	value, err := init.create(ctx, boundResolver{o: o, state: state})
	if err != nil {
		return nil, InitError{ID: id, Err: err}
	}

	o.mu.Lock()
	o.cache[id] = value
	o.mu.Unlock()
	return value, nil
}

// ResolveAs is a typed wrapper around Resolve.
func ResolveAs[T any](ctx context.Context, r Resolver, id ID) (T, error) {
	var zero T
	v, err := r.Resolve(ctx, id)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, TypeMismatchError{
			ID:       id,
			Expected: reflect.TypeOf((*T)(nil)).Elem().String(),
			Actual:   fmt.Sprintf("%T", v),
		}
	}
	return typed, nil
}
