package agent

import (
	"context"

	"github.com/dusk-indust/tutorgen/internal/backend"
	"github.com/dusk-indust/tutorgen/internal/schema"
	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// ScopeGate decides whether a topic is within the supported domain.
type ScopeGate struct {
	call *Call[tutorial.ScopeDecision]
}

// NewScopeGate binds the scope persona and contract to b.
func NewScopeGate(b backend.Backend, opts Options) *ScopeGate {
	return &ScopeGate{call: NewCall(RoleScopeGate, ScopePersona, schema.Scope, b, opts)}
}

// Classify makes exactly one scope decision for topic. A rejection is a
// valid decision, not an error.
func (g *ScopeGate) Classify(ctx context.Context, topic tutorial.Topic) (tutorial.ScopeDecision, error) {
	return g.call.Invoke(ctx, ConceptPrompt(topic))
}
