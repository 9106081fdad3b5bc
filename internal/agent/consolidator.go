package agent

import (
	"context"
	"fmt"

	"github.com/dusk-indust/tutorgen/internal/backend"
	"github.com/dusk-indust/tutorgen/internal/schema"
	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// Consolidator merges the three sections of a run into the final document.
type Consolidator struct {
	call *Call[schema.DocumentOutput]
}

// NewConsolidator binds the consolidator persona and contract to b.
func NewConsolidator(b backend.Backend, opts Options) *Consolidator {
	return &Consolidator{call: NewCall(RoleConsolidator, ConsolidatorPersona, schema.Document, b, opts)}
}

// Consolidate issues one generation call for topic and the full section
// triple. Every section must be present and in its own slot.
func (c *Consolidator) Consolidate(ctx context.Context, topic tutorial.Topic, sections tutorial.SectionSet) (tutorial.TutorialDocument, error) {
	for _, v := range tutorial.Variants {
		s := sections.Get(v)
		if s.Variant != v {
			return tutorial.TutorialDocument{}, fmt.Errorf("consolidate: %s slot holds a %s section", v, s.Variant)
		}
		if err := s.Validate(); err != nil {
			return tutorial.TutorialDocument{}, fmt.Errorf("consolidate: %w", err)
		}
	}

	out, err := c.call.Invoke(ctx, ConsolidationPrompt(topic, sections))
	if err != nil {
		return tutorial.TutorialDocument{}, err
	}
	return out.Document(), nil
}
