package initorch

import (
	"context"
	"fmt"
	"sync"
)

type compiledInitializer struct {
	kind   Kind
	deps   []ID
	create func(ctx context.Context, r Resolver) (any, error)
}

// Registry stores component definitions by identity. It replaces any
// reflective construct-from-name lookup: the host application registers an
// explicit factory per identity at startup.
type Registry struct {
	mu    sync.RWMutex
	defs  map[ID]compiledInitializer
	order []ID
}

func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[ID]compiledInitializer),
	}
}

// Register registers one component definition with generics.
func Register[Out any](r *Registry, id ID, kind Kind, def Definition[Out]) error {
	if r == nil {
		return fmt.Errorf("register component definition: registry is nil")
	}
	if err := validateID(id); err != nil {
		return fmt.Errorf("register component definition: %w", err)
	}
	if def.Create == nil {
		return fmt.Errorf("register component definition: create func is nil for %s", id)
	}
	for _, dep := range def.Deps {
		if err := validateID(dep); err != nil {
			return fmt.Errorf("register component definition %s: invalid dependency: %w", id, err)
		}
	}

	compiled := compiledInitializer{
		kind: kind,
		deps: append([]ID(nil), def.Deps...),
		create: func(ctx context.Context, resolver Resolver) (any, error) {
			return def.Create(ctx, resolver)
		},
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[id]; exists {
		return DuplicateError{ID: id}
	}
	r.defs[id] = compiled
	r.order = append(r.order, id)
	return nil
}

// MustRegister panics on registration error; intended for bootstrap code paths.
func MustRegister[Out any](r *Registry, id ID, kind Kind, def Definition[Out]) {
	if err := Register(r, id, kind, def); err != nil {
		panic(err)
	}
}

func (r *Registry) lookup(id ID) (compiledInitializer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[id]
	return def, ok
}

// IDs returns registered identities in registration order.
func (r *Registry) IDs() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ID(nil), r.order...)
}

// Validate checks that every declared dependency is registered and that the
// dependency graph is acyclic. Resolution performs the same checks lazily at
// runtime; Validate lets bootstrap code fail before anything is constructed.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defs := make(map[ID]compiledInitializer, len(r.defs))
	for id, def := range r.defs {
		defs[id] = def
	}
	order := append([]ID(nil), r.order...)
	r.mu.RUnlock()

	for _, id := range order {
		for _, dep := range defs[id].deps {
			if _, ok := defs[dep]; !ok {
				return MissingDependencyError{From: id, To: dep}
			}
		}
	}

	const (
		stateNew uint8 = iota
		stateVisiting
		stateDone
	)

	state := make(map[ID]uint8, len(order))
	stack := make([]ID, 0, len(order))
	stackPos := make(map[ID]int, len(order))

	var dfs func(id ID) error
	dfs = func(id ID) error {
		switch state[id] {
		case stateDone:
			return nil
		case stateVisiting:
			pos := stackPos[id]
			cycle := append([]ID(nil), stack[pos:]...)
			cycle = append(cycle, id)
			return CycleError{Path: cycle}
		}

		state[id] = stateVisiting
		stackPos[id] = len(stack)
		stack = append(stack, id)

		for _, dep := range defs[id].deps {
			if err := dfs(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		delete(stackPos, id)
		state[id] = stateDone
		return nil
	}

	for _, id := range order {
		if state[id] == stateDone {
			continue
		}
		if err := dfs(id); err != nil {
			return err
		}
	}
	return nil
}

func validateID(id ID) error {
	if id == "" {
		return fmt.Errorf("component id is empty")
	}
	return nil
}
