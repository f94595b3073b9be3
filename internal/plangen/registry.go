package plangen

import (
	"fmt"
	"sort"

	"github.com/vught/pacekeeper/internal/models"
)

// NotFoundError reports a request for an unregistered methodology.
type NotFoundError struct {
	Methodology string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no generator registered for methodology %q", e.Methodology)
}

// Registry maps methodology identifiers to generators. It is built once
// at startup and immutable afterwards, so concurrent reads need no
// synchronization.
type Registry struct {
	generators map[string]Generator
}

// NewRegistry builds a registry from an explicit generator list. A
// duplicate methodology identifier is a build-time defect and fails
// registry construction rather than a per-request error.
func NewRegistry(gens ...Generator) (*Registry, error) {
	r := &Registry{generators: make(map[string]Generator, len(gens))}
	for _, g := range gens {
		id := g.Methodology()
		if id == "" {
			return nil, fmt.Errorf("generator %T declares an empty methodology identifier", g)
		}
		if _, dup := r.generators[id]; dup {
			return nil, fmt.Errorf("duplicate generator registration for methodology %q", id)
		}
		r.generators[id] = g
	}
	return r, nil
}

// Default returns the registry of all built-in methodologies.
func Default() (*Registry, error) {
	return NewRegistry(NewCustomGenerator())
}

// Resolve returns the generator for a methodology identifier.
func (r *Registry) Resolve(methodology string) (Generator, error) {
	g, ok := r.generators[methodology]
	if !ok {
		return nil, &NotFoundError{Methodology: methodology}
	}
	return g, nil
}

// ListAvailable returns the sorted methodology identifiers whose
// generators support the given plan type.
func (r *Registry) ListAvailable(pt models.PlanType) []string {
	var ids []string
	for id, g := range r.generators {
		if g.Supports(pt) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// All returns every registered generator, sorted by methodology.
func (r *Registry) All() []Generator {
	gens := make([]Generator, 0, len(r.generators))
	for _, g := range r.generators {
		gens = append(gens, g)
	}
	sort.Slice(gens, func(i, j int) bool {
		return gens[i].Methodology() < gens[j].Methodology()
	})
	return gens
}
