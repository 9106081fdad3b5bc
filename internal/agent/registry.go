package agent

import (
	"fmt"
	"sync"

	"github.com/dusk-indust/tutorgen/internal/backend"
	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// GeneratorFactory constructs a section generator against a backend.
type GeneratorFactory func(b backend.Backend, opts Options) SectionGenerator

// Registry maps section variants to their generator factories.
type Registry struct {
	mu        sync.Mutex
	factories map[tutorial.Variant]GeneratorFactory
}

// NewRegistry creates a Registry pre-registered with the three standard
// generators; the code generator writes lang examples.
func NewRegistry(lang string) *Registry {
	r := &Registry{factories: make(map[tutorial.Variant]GeneratorFactory)}
	r.factories[tutorial.VariantTheory] = NewTheoryGenerator
	r.factories[tutorial.VariantExamples] = NewExamplesGenerator
	r.factories[tutorial.VariantCode] = func(b backend.Backend, opts Options) SectionGenerator {
		return NewCodeGenerator(b, opts, lang)
	}
	return r
}

// Register replaces the factory for v.
func (r *Registry) Register(v tutorial.Variant, f GeneratorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[v] = f
}

// Spawn creates the generator for a single variant.
func (r *Registry) Spawn(v tutorial.Variant, b backend.Backend, opts Options) (SectionGenerator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.factories[v]
	if !ok {
		return nil, fmt.Errorf("no factory registered for variant %q", v)
	}
	return f(b, opts), nil
}

// SpawnAll creates one generator per variant in consolidation order.
func (r *Registry) SpawnAll(b backend.Backend, opts Options) ([]SectionGenerator, error) {
	gens := make([]SectionGenerator, 0, len(tutorial.Variants))
	for _, v := range tutorial.Variants {
		g, err := r.Spawn(v, b, opts)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}
	return gens, nil
}
