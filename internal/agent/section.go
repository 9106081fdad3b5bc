package agent

import (
	"context"
	"fmt"

	"github.com/dusk-indust/tutorgen/internal/backend"
	"github.com/dusk-indust/tutorgen/internal/schema"
	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// SectionGenerator produces one section of a tutorial from the topic alone.
// Generators never see each other's output.
type SectionGenerator interface {
	// Variant identifies the section this generator produces.
	Variant() tutorial.Variant

	// Generate produces the section for topic.
	Generate(ctx context.Context, topic tutorial.Topic) (tutorial.SectionResult, error)
}

// Compile-time interface checks.
var (
	_ SectionGenerator = (*sectionGenerator[schema.TheoryOutput])(nil)
	_ SectionGenerator = (*sectionGenerator[schema.ExamplesOutput])(nil)
	_ SectionGenerator = (*sectionGenerator[schema.CodeOutput])(nil)
)

type sectionGenerator[T schema.Sectioner] struct {
	variant tutorial.Variant
	call    *Call[T]
}

func (g *sectionGenerator[T]) Variant() tutorial.Variant { return g.variant }

func (g *sectionGenerator[T]) Generate(ctx context.Context, topic tutorial.Topic) (tutorial.SectionResult, error) {
	out, err := g.call.Invoke(ctx, ConceptPrompt(topic))
	if err != nil {
		return tutorial.SectionResult{}, err
	}
	section := out.Section()
	if section.Variant != g.variant {
		return tutorial.SectionResult{}, fmt.Errorf("%s generator produced a %s section", g.variant, section.Variant)
	}
	return section, nil
}

// NewTheoryGenerator returns the theory section generator.
func NewTheoryGenerator(b backend.Backend, opts Options) SectionGenerator {
	return &sectionGenerator[schema.TheoryOutput]{
		variant: tutorial.VariantTheory,
		call:    NewCall(RoleTheory, TheoryPersona, schema.Theory, b, opts),
	}
}

// NewExamplesGenerator returns the examples section generator.
func NewExamplesGenerator(b backend.Backend, opts Options) SectionGenerator {
	return &sectionGenerator[schema.ExamplesOutput]{
		variant: tutorial.VariantExamples,
		call:    NewCall(RoleExamples, ExamplesPersona, schema.Examples, b, opts),
	}
}

// NewCodeGenerator returns the code section generator writing lang examples.
func NewCodeGenerator(b backend.Backend, opts Options, lang string) SectionGenerator {
	return &sectionGenerator[schema.CodeOutput]{
		variant: tutorial.VariantCode,
		call:    NewCall(RoleCode, CodePersona(lang), schema.Code, b, opts),
	}
}
