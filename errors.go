package initorch

import (
	"fmt"
	"strings"
)

// NotRegisteredError means an identity has no registered definition.
type NotRegisteredError struct {
	ID ID
}

func (e NotRegisteredError) Error() string {
	return fmt.Sprintf("component not registered: %s", e.ID)
}

// DuplicateError means the same identity was registered more than once.
type DuplicateError struct {
	ID ID
}

func (e DuplicateError) Error() string {
	return fmt.Sprintf("duplicate component registration: %s", e.ID)
}

// MissingDependencyError means a registered component declares a dependency
// on an identity that is not registered.
type MissingDependencyError struct {
	From ID
	To   ID
}

func (e MissingDependencyError) Error() string {
	return fmt.Sprintf("component dependency not registered: %s -> %s", e.From, e.To)
}

// CycleError means the dependency chain revisits an identity currently being
// resolved within the same top-level call. Path runs from the first visit of
// that identity to the occurrence that closed the cycle.
type CycleError struct {
	Path []ID
}

func (e CycleError) Error() string {
	if len(e.Path) == 0 {
		return "component dependency cycle detected"
	}
	parts := make([]string, len(e.Path))
	for i := range e.Path {
		parts[i] = e.Path[i].String()
	}
	return "component dependency cycle detected: " + strings.Join(parts, " -> ")
}

// InitError wraps a lookup or construction failure for one identity. The
// identity is not cached on failure, so a later resolve re-attempts
// construction.
type InitError struct {
	ID  ID
	Err error
}

func (e InitError) Error() string {
	return fmt.Sprintf("initialize component %s: %v", e.ID, e.Err)
}

func (e InitError) Unwrap() error {
	return e.Err
}

// AwaitError carries the first failure observed while waiting on launched
// jobs. Failures of sibling jobs are not aggregated; each job fails in
// isolation.
type AwaitError struct {
	Err error
}

func (e AwaitError) Error() string {
	return fmt.Sprintf("await launched initializations: %v", e.Err)
}

func (e AwaitError) Unwrap() error {
	return e.Err
}

// TypeMismatchError means ResolveAs[T] failed to cast the resolved value to T.
type TypeMismatchError struct {
	ID       ID
	Expected string
	Actual   string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("component type mismatch for %s: expected=%s actual=%s",
		e.ID, e.Expected, e.Actual)
}
