// Package orchestrator runs one tutorial generation end to end: scope gate,
// concurrent section fan-out, fan-in, consolidation. Each run is an
// independent state machine; runs share only the injected collaborators.
package orchestrator

import (
	"context"

	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// Classifier decides whether a topic is in scope.
type Classifier interface {
	Classify(ctx context.Context, topic tutorial.Topic) (tutorial.ScopeDecision, error)
}

// Consolidator merges a complete section triple into the final document.
type Consolidator interface {
	Consolidate(ctx context.Context, topic tutorial.Topic, sections tutorial.SectionSet) (tutorial.TutorialDocument, error)
}

// Linter inspects a generated section and reports problems as warnings.
type Linter interface {
	Lint(section tutorial.SectionResult) []string
}

// Orchestrator runs tutorial generation for one topic at a time per call.
type Orchestrator interface {
	// Run executes a full pipeline run for topic. onProgress may be nil.
	Run(ctx context.Context, topic string, onProgress func(ProgressEvent)) (*Result, error)
}

// Marker is a stage-level progress marker.
type Marker string

const (
	MarkerScopeCheck    Marker = "scope-check"
	MarkerRejected      Marker = "rejected"
	MarkerGenerating    Marker = "generating"
	MarkerConsolidating Marker = "consolidating"
	MarkerDone          Marker = "done"
	MarkerError         Marker = "error"
)

// ProgressEvent is emitted to the caller during a run. Stage-level events
// carry only a Marker; per-section events during generation also carry
// Section and Status.
type ProgressEvent struct {
	RunID   string         `json:"run_id"`
	Marker  Marker         `json:"marker"`
	Section string         `json:"section,omitempty"`
	Status  ProgressStatus `json:"status,omitempty"`
	Message string         `json:"message,omitempty"`
}

// ProgressStatus is the state of a section within the generating stage.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// Result is the terminal outcome of one run.
type Result struct {
	RunID    string                  `json:"run_id"`
	Topic    string                  `json:"topic"`
	State    State                   `json:"state"`
	History  []State                 `json:"history"`
	Decision *tutorial.ScopeDecision `json:"decision,omitempty"`
	// Sections and Document are set only when State is StateDone.
	Sections *tutorial.SectionSet       `json:"sections,omitempty"`
	Document *tutorial.TutorialDocument `json:"document,omitempty"`
	Warnings []string                   `json:"warnings,omitempty"`
	Err      error                      `json:"-"`
}
