// Package schema defines the structured-output contracts that every generation
// call is checked against. A contract carries a JSON Schema that is sent to the
// backend and re-applied to whatever comes back, followed by a strict typed
// decode and the payload's own semantic checks.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("schema validation failed")

// CodeValidationFailed is the stable error code reported for schema failures.
const CodeValidationFailed = "SCHEMA_VALIDATION_FAILED"

// ValidationError reports raw backend output that does not conform to a contract.
type ValidationError struct {
	// Contract is the name of the contract that rejected the output.
	Contract string
	// Reason describes the first violation found.
	Reason string
	// Raw is the offending output, truncated for logging.
	Raw string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema %s: %s", e.Contract, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Code returns CodeValidationFailed.
func (e *ValidationError) Code() string { return CodeValidationFailed }

// Validator is implemented by payloads with semantic checks beyond the schema.
type Validator interface {
	Validate() error
}

// Contract binds a named JSON Schema to the Go payload type T.
type Contract[T Validator] struct {
	name     string
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
	wire     map[string]any
}

// NewContract resolves s and returns a contract for T. It fails if s is not a
// valid schema.
func NewContract[T Validator](name string, s *jsonschema.Schema) (*Contract[T], error) {
	resolved, err := s.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("schema %s: resolve: %w", name, err)
	}
	wire, err := wireSchema(s)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	return &Contract[T]{name: name, schema: s, resolved: resolved, wire: wire}, nil
}

// MustContract is NewContract for package-level contracts built from literals.
func MustContract[T Validator](name string, s *jsonschema.Schema) *Contract[T] {
	c, err := NewContract[T](name, s)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the contract name sent to the backend as the response format name.
func (c *Contract[T]) Name() string { return c.name }

// Schema returns the underlying schema.
func (c *Contract[T]) Schema() *jsonschema.Schema { return c.schema }

// WireSchema returns the schema as a generic JSON object in the form strict
// structured output accepts: additionalProperties is disabled on every object
// and validation-only keywords are removed. Decode still enforces them.
// Callers must not modify the result.
func (c *Contract[T]) WireSchema() map[string]any { return c.wire }

// Decode validates raw against the contract and returns the typed payload.
// Every failure is a *ValidationError; nothing is coerced.
func (c *Contract[T]) Decode(raw string) (T, error) {
	var zero T

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return zero, c.fail("empty output", raw)
	}

	var instance any
	if err := json.Unmarshal([]byte(trimmed), &instance); err != nil {
		return zero, c.fail("not valid JSON: "+err.Error(), raw)
	}
	if err := c.resolved.Validate(instance); err != nil {
		return zero, c.fail(err.Error(), raw)
	}

	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return zero, c.fail("decode: "+err.Error(), raw)
	}
	if err := out.Validate(); err != nil {
		return zero, c.fail(err.Error(), raw)
	}
	return out, nil
}

func (c *Contract[T]) fail(reason, raw string) *ValidationError {
	return &ValidationError{Contract: c.name, Reason: reason, Raw: truncate(raw, 512)}
}

// wireOnlyDrop lists keywords strict structured output rejects.
var wireOnlyDrop = []string{
	"minLength", "maxLength", "pattern", "format",
	"minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum", "multipleOf",
	"minItems", "maxItems", "uniqueItems",
}

// wireSchema round-trips s through JSON and closes every object schema.
func wireSchema(s *jsonschema.Schema) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	closeObjects(m)
	return m, nil
}

func closeObjects(node map[string]any) {
	for _, k := range wireOnlyDrop {
		delete(node, k)
	}
	if t, _ := node["type"].(string); t == "object" {
		node["additionalProperties"] = false
	}
	if props, ok := node["properties"].(map[string]any); ok {
		for _, p := range props {
			if child, ok := p.(map[string]any); ok {
				closeObjects(child)
			}
		}
	}
	if items, ok := node["items"].(map[string]any); ok {
		closeObjects(items)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
