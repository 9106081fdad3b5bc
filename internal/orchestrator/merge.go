package orchestrator

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// MergePlan describes the fixed slot order of the section triple.
type MergePlan struct {
	SectionOrder []tutorial.Variant
}

// DefaultMergePlan orders sections Theory, Examples, Code.
var DefaultMergePlan = MergePlan{SectionOrder: tutorial.Variants[:]}

// validate requires every variant exactly once. The section set has a slot
// per variant, so a partial plan could never consolidate.
func (p MergePlan) validate() error {
	seen := make(map[tutorial.Variant]bool, len(p.SectionOrder))
	for _, v := range p.SectionOrder {
		if seen[v] {
			return fmt.Errorf("merge plan: %s listed twice", v)
		}
		seen[v] = true
	}
	for _, v := range tutorial.Variants {
		if !seen[v] {
			return fmt.Errorf("merge plan: %s missing", v)
		}
	}
	if len(p.SectionOrder) != len(tutorial.Variants) {
		return fmt.Errorf("merge plan: %d sections, want %d", len(p.SectionOrder), len(tutorial.Variants))
	}
	return nil
}

// Merger assembles fan-out results into a SectionSet.
type Merger struct {
	plan MergePlan
}

// NewMerger creates a Merger with the given merge plan.
func NewMerger(plan MergePlan) *Merger {
	return &Merger{plan: plan}
}

// Merge places each result in its variant's slot regardless of the order the
// results arrived in. It fails on duplicates, on variants missing from the
// plan, on results the plan does not expect and on invalid sections.
func (m *Merger) Merge(sections []tutorial.SectionResult) (tutorial.SectionSet, error) {
	seen := make(map[tutorial.Variant]int, len(sections))
	for _, sec := range sections {
		seen[sec.Variant]++
	}
	var duplicates []string
	for v, count := range seen {
		if count > 1 {
			duplicates = append(duplicates, fmt.Sprintf("%s (x%d)", v, count))
		}
	}
	if len(duplicates) > 0 {
		return tutorial.SectionSet{}, fmt.Errorf("merge: duplicate sections: %s", strings.Join(duplicates, ", "))
	}

	planned := make(map[tutorial.Variant]bool, len(m.plan.SectionOrder))
	var missing []string
	for _, v := range m.plan.SectionOrder {
		planned[v] = true
		if seen[v] == 0 {
			missing = append(missing, v.String())
		}
	}
	if len(missing) > 0 {
		return tutorial.SectionSet{}, fmt.Errorf("merge: missing sections required by plan: %s", strings.Join(missing, ", "))
	}

	var set tutorial.SectionSet
	for _, sec := range sections {
		if !planned[sec.Variant] {
			return tutorial.SectionSet{}, fmt.Errorf("merge: unexpected section %s", sec.Variant)
		}
		if err := sec.Validate(); err != nil {
			return tutorial.SectionSet{}, fmt.Errorf("merge: %w", err)
		}
		switch sec.Variant {
		case tutorial.VariantTheory:
			set.Theory = sec
		case tutorial.VariantExamples:
			set.Examples = sec
		case tutorial.VariantCode:
			set.Code = sec
		}
	}
	return set, nil
}
