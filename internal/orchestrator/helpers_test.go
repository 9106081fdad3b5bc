package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/tutorgen/internal/agent"
	"github.com/dusk-indust/tutorgen/internal/backend"
	"github.com/dusk-indust/tutorgen/internal/schema"
	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

const (
	scopeInJSON  = `{"in_scope": true, "reason": "regression is a core statistics method", "confidence": 0.95}`
	scopeOutJSON = `{"in_scope": false, "reason": "Network administration is outside data-related scope.", "confidence": 0.9}`
	theoryJSON   = `{"title": "Theory of Linear Regression", "body": "## Least squares\n\nMinimise the squared residuals."}`
	examplesJSON = `{"title": "Examples", "examples": "1. Predicting house prices from floor area."}`
	codeJSON     = "{\"title\": \"Code\", \"code\": \"```python\\nimport numpy as np\\nprint(np.polyfit([1, 2], [2, 4], 1))\\n```\"}"
	documentJSON = "{\"title\": \"Linear Regression\", \"tutorial_content\": \"## Introduction\\n\\nMinimise the squared residuals. Predicting house prices from floor area.\\n\\n```python\\nimport numpy as np\\nprint(np.polyfit([1, 2], [2, 4], 1))\\n```\\n\", \"summary\": \"Theory, examples and code for linear regression.\"}"
)

// happyReplies returns scripted replies for a successful in-scope run.
func happyReplies() map[string]backend.Reply {
	return map[string]backend.Reply{
		schema.NameScope:    {Output: scopeInJSON},
		schema.NameTheory:   {Output: theoryJSON},
		schema.NameExamples: {Output: examplesJSON},
		schema.NameCode:     {Output: codeJSON},
		schema.NameDocument: {Output: documentJSON},
	}
}

func newScriptedPipeline(t *testing.T, b backend.Backend, cfg Config) *Pipeline {
	t.Helper()
	p, err := New(b, agent.Options{}, agent.NewRegistry("python"), cfg)
	require.NoError(t, err)
	return p
}

// fakeGenerator is a SectionGenerator driven by a func field.
type fakeGenerator struct {
	variant  tutorial.Variant
	generate func(ctx context.Context, topic tutorial.Topic) (tutorial.SectionResult, error)
	calls    atomic.Int32
}

func (f *fakeGenerator) Variant() tutorial.Variant { return f.variant }

func (f *fakeGenerator) Generate(ctx context.Context, topic tutorial.Topic) (tutorial.SectionResult, error) {
	f.calls.Add(1)
	return f.generate(ctx, topic)
}

func okGenerator(v tutorial.Variant) *fakeGenerator {
	return &fakeGenerator{variant: v, generate: func(context.Context, tutorial.Topic) (tutorial.SectionResult, error) {
		return tutorial.SectionResult{Variant: v, Title: v.Label(), Body: v.String() + " body"}, nil
	}}
}

// fakeGate and fakeConsolidator record their calls.
type fakeGate struct {
	decision tutorial.ScopeDecision
	err      error
	calls    atomic.Int32
}

func (g *fakeGate) Classify(context.Context, tutorial.Topic) (tutorial.ScopeDecision, error) {
	g.calls.Add(1)
	return g.decision, g.err
}

type fakeConsolidator struct {
	mu     sync.Mutex
	calls  int
	topics []tutorial.Topic
	inputs []tutorial.SectionSet
	err    error
}

func (c *fakeConsolidator) Consolidate(_ context.Context, topic tutorial.Topic, s tutorial.SectionSet) (tutorial.TutorialDocument, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.topics = append(c.topics, topic)
	c.inputs = append(c.inputs, s)
	if c.err != nil {
		return tutorial.TutorialDocument{}, c.err
	}
	return tutorial.TutorialDocument{
		Title:   topic.String(),
		Content: s.Theory.Body + "\n" + s.Examples.Body + "\n" + s.Code.Body,
		Summary: "summary of " + topic.String(),
	}, nil
}

func (c *fakeConsolidator) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// eventLog collects progress events safely.
type eventLog struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (l *eventLog) add(ev ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) all() []ProgressEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ProgressEvent, len(l.events))
	copy(out, l.events)
	return out
}

// markers returns only the stage-level markers, in order.
func (l *eventLog) markers() []Marker {
	var out []Marker
	for _, ev := range l.all() {
		if ev.Section == "" {
			out = append(out, ev.Marker)
		}
	}
	return out
}
