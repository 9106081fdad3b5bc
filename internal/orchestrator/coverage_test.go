package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

func coverageSections(code string) tutorial.SectionSet {
	return tutorial.SectionSet{
		Theory:   tutorial.SectionResult{Variant: tutorial.VariantTheory, Title: "T", Body: "theory"},
		Examples: tutorial.SectionResult{Variant: tutorial.VariantExamples, Title: "E", Body: "examples"},
		Code:     tutorial.SectionResult{Variant: tutorial.VariantCode, Title: "C", Body: code},
	}
}

func TestCheckCoverage_Clean(t *testing.T) {
	code := "```python\nimport pandas as pd\ndf = pd.DataFrame()\n```"
	doc := tutorial.TutorialDocument{Title: "t", Summary: "s",
		Content: "## Intro\n\ntheory examples\n\n```python\nimport pandas as pd\ndf = pd.DataFrame()\n```\n"}

	assert.Empty(t, CheckCoverage(coverageSections(code), doc))
}

func TestCheckCoverage_DroppedCode(t *testing.T) {
	code := "```python\nimport pandas as pd\n```"
	doc := tutorial.TutorialDocument{Title: "t", Summary: "s", Content: "a long document without any code at all"}

	issues := CheckCoverage(coverageSections(code), doc)
	require.Len(t, issues, 1)
	assert.Equal(t, "code", issues[0].Section)
	assert.Contains(t, issues[0].Description, "document has none")
}

func TestCheckCoverage_ChangedBlock(t *testing.T) {
	code := "```python\nimport pandas as pd\n```\n\n```python\nfrom sklearn import svm\n```"
	doc := tutorial.TutorialDocument{Title: "t", Summary: "s",
		Content: "intro text long enough\n```python\nimport pandas as pd\n```\n```python\nimport sklearn\n```"}

	issues := CheckCoverage(coverageSections(code), doc)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].String(), `code block 2 ("from sklearn import svm")`)
}

func TestCheckCoverage_ShortDocument(t *testing.T) {
	sections := coverageSections("no fences here, just a very long explanation of the code")
	doc := tutorial.TutorialDocument{Title: "t", Summary: "s", Content: "tiny"}

	issues := CheckCoverage(sections, doc)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Description, "shorter than the code section")
}
