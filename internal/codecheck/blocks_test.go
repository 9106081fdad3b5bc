package codecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	for in, want := range map[string]Language{
		"python": LangPython, "PY": LangPython, " golang ": LangGo,
		"rs": LangRust, "ts": LangTypeScript,
	} {
		got, ok := ParseLanguage(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseLanguage("cobol")
	assert.False(t, ok)
}

func TestBlocks(t *testing.T) {
	md := "intro\n```python\nx = 1\ny = 2\n```\ntext\n~~~go\nfmt.Println()\n~~~\n```\nplain\n"
	blocks := Blocks(md)
	require.Len(t, blocks, 3)

	assert.Equal(t, "python", blocks[0].Info)
	assert.Equal(t, 3, blocks[0].Line)
	assert.Equal(t, "x = 1\ny = 2", blocks[0].Code)

	assert.Equal(t, "go", blocks[1].Info)
	assert.Equal(t, "fmt.Println()", blocks[1].Code)

	// Unterminated fence runs to the end.
	assert.Equal(t, "", blocks[2].Info)
	assert.Equal(t, "plain\n", blocks[2].Code)
}

func TestIssueString(t *testing.T) {
	assert.Equal(t, `line 3: syntax error near "def f(:"`, Issue{Line: 3, Near: "def f(:"}.String())
	assert.Equal(t, `line 1: missing ")"`, Issue{Line: 1, Missing: ")"}.String())
}
