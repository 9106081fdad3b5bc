package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Compile-time interface checks.
var (
	_ Backend = (*Offline)(nil)
	_ Prober  = (*Offline)(nil)
)

// Offline is a deterministic backend that needs no network. It answers every
// known response format with well-formed content derived from the request, so
// the full pipeline can run in demos and end-to-end tests.
type Offline struct {
	// Keywords marks a topic as in scope when any keyword appears in it.
	// Nil means DefaultScopeKeywords.
	Keywords []string
}

// DefaultScopeKeywords approximates the data and machine learning domain.
var DefaultScopeKeywords = []string{
	"data", "regression", "statistic", "probability", "learning", "neural",
	"classification", "cluster", "pandas", "numpy", "sql", "tree", "forest",
	"bayes", "vector", "gradient", "model", "analysis", "visualization",
	"tensor", "feature", "sampling", "distribution", "time series",
}

// NewOffline returns an Offline backend with the default keyword list.
func NewOffline() *Offline { return &Offline{} }

// Probe always succeeds.
func (o *Offline) Probe(ctx context.Context) error { return ctx.Err() }

// Generate returns a canned JSON payload for req.SchemaName.
func (o *Offline) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	topic := conceptOf(req.Content)

	var payload any
	switch req.SchemaName {
	case "scope_decision":
		payload = o.classify(topic)
	case "theory_section":
		payload = map[string]any{
			"title": "Understanding " + topic,
			"body": fmt.Sprintf("#### What is %s?\n\n%s is introduced here with its core definitions, "+
				"the assumptions it rests on and the intuition behind it.\n\n#### Key ideas\n\n"+
				"- Definitions and notation\n- How %s behaves in practice\n- Common pitfalls\n", topic, topic, topic),
		}
	case "examples_section":
		payload = map[string]any{
			"title": topic + " in Practice",
			"examples": fmt.Sprintf("1. **Everyday scenario.** A small dataset illustrates %s step by step.\n"+
				"2. **Industry scenario.** A business team applies %s to a real decision.\n", topic, topic),
		}
	case "code_section":
		payload = map[string]any{
			"title": "Implementing " + topic,
			"code": fmt.Sprintf("```python\n# %s\ndef main():\n    data = [1, 2, 3, 4]\n    "+
				"print(sum(data) / len(data))\n\n\nif __name__ == \"__main__\":\n    main()\n```\n", topic),
		}
	case "tutorial_document":
		payload = map[string]any{
			"title":            "A Practical Guide to " + topic,
			"tutorial_content": consolidate(topic, req.Content),
			"summary":          fmt.Sprintf("This tutorial explains %s, walks through examples and shows working code.", topic),
		}
	default:
		return "", &UnavailableError{Backend: "offline", Err: fmt.Errorf("unsupported response format %q", req.SchemaName)}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("offline backend: %w", err)
	}
	return string(data), nil
}

func (o *Offline) classify(topic string) map[string]any {
	keywords := o.Keywords
	if keywords == nil {
		keywords = DefaultScopeKeywords
	}
	lower := strings.ToLower(topic)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return map[string]any{
				"in_scope":   true,
				"reason":     fmt.Sprintf("%q relates to data science (matched %q).", topic, kw),
				"confidence": 0.9,
			}
		}
	}
	return map[string]any{
		"in_scope":   false,
		"reason":     fmt.Sprintf("%q is outside data-related scope.", topic),
		"confidence": 0.8,
	}
}

// conceptOf extracts the topic from a "Concept: <topic>" or "Topic: <topic>"
// line, falling back to the first line of content.
func conceptOf(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		for _, prefix := range []string{"Concept:", "Topic:"} {
			if rest, ok := strings.CutPrefix(line, prefix); ok {
				return strings.TrimSpace(rest)
			}
		}
	}
	first, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	return first
}

// consolidate stitches the sections embedded in a consolidation prompt into
// one document with an introduction and conclusion.
func consolidate(topic, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Introduction\n\nThis guide covers %s from first principles to working code.\n\n", topic)
	for _, s := range promptSections(content) {
		fmt.Fprintf(&b, "## %s\n\n", s.label)
		if s.title != "" {
			fmt.Fprintf(&b, "### %s\n\n", s.title)
		}
		if s.body != "" {
			b.WriteString(s.body)
			b.WriteString("\n\n")
		}
	}
	fmt.Fprintf(&b, "## Conclusion\n\nYou now know the theory behind %s, where it applies and how to implement it.\n", topic)
	return b.String()
}

type promptSection struct {
	label, title, body string
}

// promptSections splits "## <Label> Section:" blocks. The first line of a
// block is its title.
func promptSections(content string) []promptSection {
	var (
		out   []promptSection
		cur   *promptSection
		lines []string
	)
	flush := func() {
		if cur == nil {
			return
		}
		text := strings.Trim(strings.Join(lines, "\n"), "\n")
		title, body, _ := strings.Cut(text, "\n")
		cur.title = strings.TrimSpace(title)
		cur.body = strings.TrimSpace(body)
		out = append(out, *cur)
	}
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") && strings.HasSuffix(trimmed, " Section:") {
			flush()
			label := strings.TrimSuffix(strings.TrimPrefix(trimmed, "## "), " Section:")
			cur = &promptSection{label: label}
			lines = nil
			continue
		}
		if cur != nil {
			lines = append(lines, line)
		}
	}
	flush()
	return out
}
