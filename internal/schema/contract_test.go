package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_DecodeValid(t *testing.T) {
	d, err := Scope.Decode(`{"in_scope": true, "reason": "core statistics topic", "confidence": 0.92}`)

	require.NoError(t, err)
	assert.True(t, d.InScope)
	assert.Equal(t, "core statistics topic", d.Reason)
	assert.InDelta(t, 0.92, d.Confidence, 1e-9)
}

func TestScope_DecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", "   "},
		{"not json", "Sure! Here is the answer"},
		{"missing reason", `{"in_scope": false, "confidence": 0.4}`},
		{"missing confidence", `{"in_scope": false, "reason": "networking"}`},
		{"missing decision", `{"reason": "networking", "confidence": 0.4}`},
		{"confidence above range", `{"in_scope": true, "reason": "x", "confidence": 1.5}`},
		{"confidence below range", `{"in_scope": true, "reason": "x", "confidence": -0.01}`},
		{"string confidence", `{"in_scope": true, "reason": "x", "confidence": "high"}`},
		{"string decision", `{"in_scope": "yes", "reason": "x", "confidence": 0.5}`},
		{"blank reason", `{"in_scope": true, "reason": "  ", "confidence": 0.5}`},
		{"unknown field", `{"in_scope": true, "reason": "x", "confidence": 0.5, "extra": 1}`},
		{"array", `[1, 2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scope.Decode(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, NameScope, ve.Contract)
			assert.Equal(t, CodeValidationFailed, ve.Code())
			assert.NotEmpty(t, ve.Reason)
		})
	}
}

func TestSectionContracts_MapWireFields(t *testing.T) {
	theory, err := Theory.Decode(`{"title": "Theory", "body": "Least squares..."}`)
	require.NoError(t, err)
	assert.Equal(t, "Least squares...", theory.Section().Body)

	examples, err := Examples.Decode(`{"title": "Examples", "examples": "1. Housing prices"}`)
	require.NoError(t, err)
	assert.Equal(t, "1. Housing prices", examples.Section().Body)

	code, err := Code.Decode("{\"title\": \"Code\", \"code\": \"```python\\nprint(1)\\n```\"}")
	require.NoError(t, err)
	assert.Contains(t, code.Section().Body, "print(1)")
}

func TestSectionContracts_RejectEmptyOrWrongField(t *testing.T) {
	_, err := Theory.Decode(`{"title": "Theory", "body": ""}`)
	assert.ErrorIs(t, err, ErrValidation)

	// The examples contract has no "body" field.
	_, err = Examples.Decode(`{"title": "Examples", "body": "x"}`)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = Code.Decode(`{"code": "x"}`)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDocument_Decode(t *testing.T) {
	doc, err := Document.Decode(`{"title": "Linear Regression", "tutorial_content": "## Intro", "summary": "A primer."}`)
	require.NoError(t, err)

	got := doc.Document()
	assert.Equal(t, "Linear Regression", got.Title)
	assert.Equal(t, "## Intro", got.Content)
	assert.Equal(t, "A primer.", got.Summary)

	_, err = Document.Decode(`{"title": "Linear Regression", "tutorial_content": "## Intro"}`)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestContract_WireSchemaIsClosed(t *testing.T) {
	wire := Scope.WireSchema()

	assert.Equal(t, "object", wire["type"])
	assert.Equal(t, false, wire["additionalProperties"])
	props, ok := wire["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "in_scope")
	assert.Contains(t, props, "reason")
	assert.Contains(t, props, "confidence")
	assert.ElementsMatch(t, []any{"in_scope", "reason", "confidence"}, wire["required"])
}

func TestContract_WireSchemaOmitsValidationKeywords(t *testing.T) {
	for _, wire := range []map[string]any{
		Scope.WireSchema(), Theory.WireSchema(), Examples.WireSchema(), Code.WireSchema(), Document.WireSchema(),
	} {
		props, ok := wire["properties"].(map[string]any)
		require.True(t, ok)
		for name, p := range props {
			prop, ok := p.(map[string]any)
			require.True(t, ok, name)
			for _, k := range []string{"minLength", "minimum", "maximum"} {
				assert.NotContains(t, prop, k, "%s.%s", name, k)
			}
			assert.Contains(t, prop, "type", name)
		}
	}

	// The dropped keywords still apply locally.
	_, err := Theory.Decode(`{"title": "", "body": "x"}`)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = Scope.Decode(`{"in_scope": true, "reason": "r", "confidence": 1.5}`)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestContract_Names(t *testing.T) {
	assert.Equal(t, "scope_decision", Scope.Name())
	assert.Equal(t, "theory_section", Theory.Name())
	assert.Equal(t, "examples_section", Examples.Name())
	assert.Equal(t, "code_section", Code.Name())
	assert.Equal(t, "tutorial_document", Document.Name())
}

func TestValidationError_TruncatesRaw(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	_, err := Theory.Decode(string(long))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Less(t, len(ve.Raw), 600)
}
