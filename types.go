package initorch

import "context"

// ID is the unique, stable identity of a component.
// It is the cache key and the registry key.
type ID string

func (id ID) String() string {
	return string(id)
}

// Kind tells bulk initialization how to execute a component.
type Kind uint8

const (
	// KindSync components are resolved on the calling goroutine, blocking
	// until construction completes.
	KindSync Kind = iota
	// KindAsync components are launched as tracked background jobs.
	KindAsync
)

func (k Kind) String() string {
	switch k {
	case KindSync:
		return "sync"
	case KindAsync:
		return "async"
	default:
		return "unknown"
	}
}

// Entry is one discovered component: identity plus execution kind.
type Entry struct {
	ID   ID
	Kind Kind
}

// Resolver provides runtime dependency resolution.
type Resolver interface {
	Resolve(ctx context.Context, id ID) (any, error)
}

// Discoverer supplies a bulk-initialization batch. Concrete implementations
// (manifest files, static registration calls) live outside the core; the
// orchestrator only consumes the ordered entries they produce.
type Discoverer interface {
	Discover(ctx context.Context) ([]Entry, error)
}

// Definition describes how to construct one component.
//
// Deps lists the identities resolved before Create runs, in declared order.
// Create builds the component value and must be provided. The Resolver it
// receives is bound to the resolution in progress, so Create may resolve
// additional identities beyond Deps without deadlocking.
type Definition[Out any] struct {
	Deps   []ID
	Create func(ctx context.Context, r Resolver) (Out, error)
}
