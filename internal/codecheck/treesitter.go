//go:build cgo

package codecheck

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Checker parses snippets of one language. A fresh tree-sitter parser is
// created per call, so a Checker is safe for concurrent use.
type Checker struct {
	lang   Language
	tsLang *tree_sitter.Language
}

// New returns a Checker for lang.
func New(lang string) (*Checker, error) {
	l, ok := ParseLanguage(lang)
	if !ok {
		return nil, fmt.Errorf("codecheck: unsupported language %q", lang)
	}
	return &Checker{lang: l, tsLang: grammar(l)}, nil
}

func grammar(l Language) *tree_sitter.Language {
	switch l {
	case LangGo:
		return tree_sitter.NewLanguage(tree_sitter_go.Language())
	case LangRust:
		return tree_sitter.NewLanguage(tree_sitter_rust.Language())
	case LangTypeScript:
		return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	default:
		return tree_sitter.NewLanguage(tree_sitter_python.Language())
	}
}

// Language returns the checker's language.
func (c *Checker) Language() Language { return c.lang }

// Check parses one snippet and returns its syntax issues. Go and Rust
// snippets are retried inside a synthetic package or function body when they
// hold bare statements, as tutorial excerpts often do.
func (c *Checker) Check(src string) ([]Issue, error) {
	issues, err := c.parse(src)
	if err != nil || len(issues) == 0 {
		return issues, err
	}
	for _, w := range c.wrappers(src) {
		wrapped, werr := c.parse(w.prefix + src + w.suffix)
		if werr != nil {
			return nil, werr
		}
		if len(wrapped) == 0 {
			return nil, nil
		}
		if len(wrapped) < len(issues) {
			issues = shift(wrapped, w.lines)
		}
	}
	return issues, nil
}

type wrapper struct {
	prefix, suffix string
	lines          int
}

func (c *Checker) wrappers(src string) []wrapper {
	switch c.lang {
	case LangGo:
		if strings.Contains(src, "package ") {
			return nil
		}
		return []wrapper{
			{prefix: "package snippet\n", lines: 1},
			{prefix: "package snippet\nfunc _() {\n", suffix: "\n}\n", lines: 2},
		}
	case LangRust:
		return []wrapper{{prefix: "fn main() {\n", suffix: "\n}\n", lines: 1}}
	default:
		return nil
	}
}

func (c *Checker) parse(src string) ([]Issue, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(c.tsLang); err != nil {
		return nil, fmt.Errorf("codecheck: set language %s: %w", c.lang, err)
	}

	source := []byte(src)
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("codecheck: tree-sitter returned nil tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}

	var issues []Issue
	cursor := root.Walk()
	defer cursor.Close()
	collect(cursor, source, &issues)
	return issues, nil
}

// collect walks the subtree under cursor and records error and missing nodes.
// It does not descend into error nodes.
func collect(cursor *tree_sitter.TreeCursor, source []byte, issues *[]Issue) {
	node := cursor.Node()
	pos := node.StartPosition()
	switch {
	case node.IsMissing():
		*issues = append(*issues, Issue{Line: int(pos.Row) + 1, Column: int(pos.Column) + 1, Missing: node.Kind()})
		return
	case node.IsError():
		*issues = append(*issues, Issue{Line: int(pos.Row) + 1, Column: int(pos.Column) + 1, Near: excerpt(node.Utf8Text(source))})
		return
	case !node.HasError():
		return
	}

	if cursor.GotoFirstChild() {
		for {
			collect(cursor, source, issues)
			if !cursor.GotoNextSibling() {
				break
			}
		}
		cursor.GotoParent()
	}
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 40 {
		s = s[:40] + "..."
	}
	return s
}

// Available reports whether the grammars load and parse, which needs a cgo
// build.
func Available() bool {
	c, err := New(string(LangPython))
	if err != nil {
		return false
	}
	issues, err := c.Check("x = 1\n")
	return err == nil && len(issues) == 0
}
