package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dusk-indust/tutorgen/internal/orchestrator"
	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// TutorialExport is the JSON record of a finished run.
type TutorialExport struct {
	RunID      string                    `json:"runId"`
	Topic      string                    `json:"topic"`
	ExportedAt string                    `json:"exportedAt"`
	Decision   *tutorial.ScopeDecision   `json:"decision,omitempty"`
	Sections   []SectionExport           `json:"sections"`
	Document   tutorial.TutorialDocument `json:"document"`
	Warnings   []string                  `json:"warnings,omitempty"`
}

// SectionExport describes one generated section.
type SectionExport struct {
	Variant string `json:"variant"`
	Title   string `json:"title"`
	Body    string `json:"body"`
}

// ErrIncomplete is returned when exporting a run that produced no document.
var ErrIncomplete = errors.New("export: run has no document")

// BuildExport builds the JSON record of res, which must be in StateDone.
func BuildExport(res *orchestrator.Result, now time.Time) (*TutorialExport, error) {
	if res == nil || res.State != orchestrator.StateDone || res.Document == nil || res.Sections == nil {
		return nil, ErrIncomplete
	}
	out := &TutorialExport{
		RunID:      res.RunID,
		Topic:      res.Topic,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Decision:   res.Decision,
		Document:   *res.Document,
		Warnings:   res.Warnings,
	}
	for _, s := range res.Sections.Ordered() {
		out.Sections = append(out.Sections, SectionExport{Variant: s.Variant.String(), Title: s.Title, Body: s.Body})
	}
	return out, nil
}

// JSON renders the run record of res as indented JSON.
func JSON(res *orchestrator.Result, now time.Time) ([]byte, error) {
	exp, err := BuildExport(res, now)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: marshal json: %w", err)
	}
	return append(data, '\n'), nil
}
