package schema

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// Wire payloads. Field names follow the JSON the backend is asked to produce;
// each payload converts to its tutorial type.

// TheoryOutput is the theory generator's payload.
type TheoryOutput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ExamplesOutput is the examples generator's payload.
type ExamplesOutput struct {
	Title    string `json:"title"`
	Examples string `json:"examples"`
}

// CodeOutput is the code generator's payload.
type CodeOutput struct {
	Title string `json:"title"`
	Code  string `json:"code"`
}

// DocumentOutput is the consolidator's payload.
type DocumentOutput struct {
	Title           string `json:"title"`
	TutorialContent string `json:"tutorial_content"`
	Summary         string `json:"summary"`
}

func (o TheoryOutput) Validate() error { return o.Section().Validate() }

func (o ExamplesOutput) Validate() error { return o.Section().Validate() }

func (o CodeOutput) Validate() error { return o.Section().Validate() }

func (o DocumentOutput) Validate() error { return o.Document().Validate() }

// Section converts the payload into a SectionResult.
func (o TheoryOutput) Section() tutorial.SectionResult {
	return tutorial.SectionResult{Variant: tutorial.VariantTheory, Title: o.Title, Body: o.Body}
}

// Section converts the payload into a SectionResult.
func (o ExamplesOutput) Section() tutorial.SectionResult {
	return tutorial.SectionResult{Variant: tutorial.VariantExamples, Title: o.Title, Body: o.Examples}
}

// Section converts the payload into a SectionResult.
func (o CodeOutput) Section() tutorial.SectionResult {
	return tutorial.SectionResult{Variant: tutorial.VariantCode, Title: o.Title, Body: o.Code}
}

// Document converts the payload into a TutorialDocument.
func (o DocumentOutput) Document() tutorial.TutorialDocument {
	return tutorial.TutorialDocument{Title: o.Title, Content: o.TutorialContent, Summary: o.Summary}
}

// Sectioner is implemented by the three section payloads.
type Sectioner interface {
	Validator
	Section() tutorial.SectionResult
}

// Contract names, used as the structured-output format name on the wire.
const (
	NameScope    = "scope_decision"
	NameTheory   = "theory_section"
	NameExamples = "examples_section"
	NameCode     = "code_section"
	NameDocument = "tutorial_document"
)

var (
	// Scope is the scope gate's contract.
	Scope = MustContract[tutorial.ScopeDecision](NameScope, object(
		map[string]*jsonschema.Schema{
			"in_scope":   {Type: "boolean", Description: "Whether the concept belongs to the supported domain."},
			"reason":     nonEmpty("Short explanation of the decision."),
			"confidence": {Type: "number", Minimum: ptr(0.0), Maximum: ptr(1.0), Description: "Confidence between 0 and 1."},
		},
		"in_scope", "reason", "confidence",
	))

	// Theory is the theory generator's contract.
	Theory = MustContract[TheoryOutput](NameTheory, sectionSchema("body"))

	// Examples is the examples generator's contract.
	Examples = MustContract[ExamplesOutput](NameExamples, sectionSchema("examples"))

	// Code is the code generator's contract.
	Code = MustContract[CodeOutput](NameCode, sectionSchema("code"))

	// Document is the consolidator's contract.
	Document = MustContract[DocumentOutput](NameDocument, object(
		map[string]*jsonschema.Schema{
			"title":            nonEmpty("Tutorial title."),
			"tutorial_content": nonEmpty("Full tutorial body in Markdown."),
			"summary":          nonEmpty("Two or three sentence summary."),
		},
		"title", "tutorial_content", "summary",
	))
)

func sectionSchema(bodyField string) *jsonschema.Schema {
	return object(map[string]*jsonschema.Schema{
		"title":   nonEmpty("Section title."),
		bodyField: nonEmpty("Section content in Markdown."),
	}, "title", bodyField)
}

func object(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

func nonEmpty(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", MinLength: ptr(1), Description: desc}
}

func ptr[T any](v T) *T { return &v }
