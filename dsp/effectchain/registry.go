package effectchain

import (
	"fmt"
	"slices"
)

// Registry maps module kinds to factories.
type Registry struct {
	factories map[Kind]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Kind]Factory)}
}

// Register adds a factory for kind.
func (r *Registry) Register(kind Kind, factory Factory) error {
	if !kind.Valid() {
		return fmt.Errorf("effectchain: register %s: %w", kind, ErrInvalidKind)
	}

	if factory == nil {
		return fmt.Errorf("effectchain: factory for %s must not be nil", kind)
	}

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("effectchain: %s: %w", kind, errDuplicateKind)
	}

	r.factories[kind] = factory

	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(kind Kind, factory Factory) {
	if err := r.Register(kind, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory for kind, or nil.
func (r *Registry) Lookup(kind Kind) Factory {
	return r.factories[kind]
}

// Kinds returns the registered kinds in numeric order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}

	slices.Sort(out)

	return out
}
