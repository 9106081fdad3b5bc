// Package tutorial holds the value types that flow through one generation run:
// the submitted topic, the scope decision, the three generated sections and the
// consolidated document.
package tutorial

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyTopic is returned when a topic is blank after trimming.
var ErrEmptyTopic = errors.New("topic must not be empty")

// Topic is the user-supplied subject of a run. The zero value is invalid; use
// NewTopic.
type Topic struct {
	text string
}

// NewTopic trims s and returns it as a Topic.
func NewTopic(s string) (Topic, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Topic{}, ErrEmptyTopic
	}
	return Topic{text: s}, nil
}

// String returns the topic text.
func (t Topic) String() string { return t.text }

// IsZero reports whether t was never initialized through NewTopic.
func (t Topic) IsZero() bool { return t.text == "" }

// Variant identifies one of the three independently generated sections.
type Variant int

const (
	VariantTheory Variant = iota
	VariantExamples
	VariantCode
)

// Variants lists every variant in consolidation order.
var Variants = [...]Variant{VariantTheory, VariantExamples, VariantCode}

func (v Variant) String() string {
	names := [...]string{"theory", "examples", "code"}
	if v >= 0 && int(v) < len(names) {
		return names[v]
	}
	return "unknown"
}

// Label is the human-readable name used in prompts and exports.
func (v Variant) Label() string {
	switch v {
	case VariantTheory:
		return "Theory"
	case VariantExamples:
		return "Examples"
	case VariantCode:
		return "Code"
	default:
		return "Unknown"
	}
}

// ParseVariant maps a variant name back to its Variant.
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if strings.EqualFold(s, v.String()) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown variant %q", s)
}

// ScopeDecision is the scope gate's verdict on a topic.
type ScopeDecision struct {
	InScope    bool    `json:"in_scope"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// Validate enforces a non-empty reason and a confidence within [0, 1].
func (d ScopeDecision) Validate() error {
	if strings.TrimSpace(d.Reason) == "" {
		return errors.New("reason must not be empty")
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0, 1]", d.Confidence)
	}
	return nil
}

// SectionResult is one generated section. Body holds Markdown regardless of
// which wire field it arrived in.
type SectionResult struct {
	Variant Variant `json:"variant"`
	Title   string  `json:"title"`
	Body    string  `json:"body"`
}

// Validate requires a non-empty title and body.
func (s SectionResult) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%s section: title must not be empty", s.Variant)
	}
	if strings.TrimSpace(s.Body) == "" {
		return fmt.Errorf("%s section: body must not be empty", s.Variant)
	}
	return nil
}

// SectionSet is the complete fan-in triple handed to the consolidator.
type SectionSet struct {
	Theory   SectionResult `json:"theory"`
	Examples SectionResult `json:"examples"`
	Code     SectionResult `json:"code"`
}

// Ordered returns the sections in consolidation order.
func (s SectionSet) Ordered() []SectionResult {
	return []SectionResult{s.Theory, s.Examples, s.Code}
}

// Get returns the section for v.
func (s SectionSet) Get(v Variant) SectionResult {
	switch v {
	case VariantExamples:
		return s.Examples
	case VariantCode:
		return s.Code
	default:
		return s.Theory
	}
}

// TutorialDocument is the consolidated output of a successful run.
type TutorialDocument struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Summary string `json:"summary"`
}

// Validate requires every field to be present.
func (d TutorialDocument) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(d.Content) == "" {
		missing = append(missing, "content")
	}
	if strings.TrimSpace(d.Summary) == "" {
		missing = append(missing, "summary")
	}
	if len(missing) > 0 {
		return fmt.Errorf("document: empty %s", strings.Join(missing, ", "))
	}
	return nil
}
