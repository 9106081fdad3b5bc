// Package codecheck syntax-checks the fenced code blocks of a generated code
// section with tree-sitter. Findings are advisory: they are attached to a run
// as warnings and never fail it.
package codecheck

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// ErrUnavailable is returned when the binary was built without cgo, which
// the tree-sitter grammars need.
var ErrUnavailable = errors.New("codecheck: tree-sitter unavailable (built without cgo)")

// Language identifies a grammar.
type Language string

const (
	LangPython     Language = "python"
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangTypeScript Language = "typescript"
)

// aliases maps fence info strings onto languages.
var aliases = map[string]Language{
	"python": LangPython, "py": LangPython, "python3": LangPython,
	"go": LangGo, "golang": LangGo,
	"rust": LangRust, "rs": LangRust,
	"typescript": LangTypeScript, "ts": LangTypeScript,
}

// ParseLanguage maps a language name or fence alias to a Language.
func ParseLanguage(s string) (Language, bool) {
	l, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	return l, ok
}

// Issue is one syntax problem. Line and Column are 1-based and relative to
// the text that was checked.
type Issue struct {
	Line   int
	Column int
	// Missing is set when the parser inserted a token that was absent.
	Missing string
	Near    string
}

func (i Issue) String() string {
	if i.Missing != "" {
		return fmt.Sprintf("line %d: missing %q", i.Line, i.Missing)
	}
	return fmt.Sprintf("line %d: syntax error near %q", i.Line, i.Near)
}

func shift(issues []Issue, lines int) []Issue {
	out := make([]Issue, 0, len(issues))
	for _, is := range issues {
		is.Line -= lines
		if is.Line < 1 {
			is.Line = 1
		}
		out = append(out, is)
	}
	return out
}

// Block is a fenced code block found in Markdown.
type Block struct {
	// Info is the fence info string, e.g. "python".
	Info string
	// Line is the 1-based line of the first code line.
	Line int
	Code string
}

// Blocks extracts the fenced code blocks of markdown. An unterminated fence
// runs to the end of the text.
func Blocks(markdown string) []Block {
	var (
		blocks []Block
		cur    *Block
		fence  string
		body   []string
	)
	for i, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if cur == nil {
			for _, f := range []string{"```", "~~~"} {
				if strings.HasPrefix(trimmed, f) {
					cur = &Block{Info: strings.TrimSpace(strings.TrimLeft(trimmed, f[:1])), Line: i + 2}
					fence = f
					body = nil
					break
				}
			}
			continue
		}
		if strings.HasPrefix(trimmed, fence) && strings.Trim(trimmed, fence[:1]) == "" {
			cur.Code = strings.Join(body, "\n")
			blocks = append(blocks, *cur)
			cur = nil
			continue
		}
		body = append(body, line)
	}
	if cur != nil {
		cur.Code = strings.Join(body, "\n")
		blocks = append(blocks, *cur)
	}
	return blocks
}

// CheckMarkdown checks every block of markdown tagged with the checker's
// language. Issue lines are relative to markdown.
func (c *Checker) CheckMarkdown(markdown string) ([]Issue, error) {
	var all []Issue
	for _, b := range Blocks(markdown) {
		info, _, _ := strings.Cut(b.Info, " ")
		if l, ok := ParseLanguage(info); !ok || l != c.lang {
			continue
		}
		issues, err := c.Check(b.Code)
		if err != nil {
			return all, err
		}
		for _, is := range issues {
			is.Line += b.Line - 1
			all = append(all, is)
		}
	}
	return all, nil
}

// Lint checks the code section and renders issues as warnings. Other
// sections are ignored.
func (c *Checker) Lint(section tutorial.SectionResult) []string {
	if section.Variant != tutorial.VariantCode {
		return nil
	}
	issues, err := c.CheckMarkdown(section.Body)
	if err != nil {
		return []string{fmt.Sprintf("%s: lint failed: %v", section.Variant, err)}
	}
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		out = append(out, fmt.Sprintf("%s: %s", section.Variant, is))
	}
	return out
}

