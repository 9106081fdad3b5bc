package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/tutorgen/internal/orchestrator"
	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func doneResult() *orchestrator.Result {
	doc := tutorial.TutorialDocument{
		Title:   "Linear Regression",
		Summary: "Fit a line to data.",
		Content: "## Theory\n\nLeast squares.\n\n```python\nprint(1)\n```\n\n| a | b |\n|---|---|\n| 1 | 2 |",
	}
	sections := tutorial.SectionSet{
		Theory:   tutorial.SectionResult{Variant: tutorial.VariantTheory, Title: "Theory", Body: "t"},
		Examples: tutorial.SectionResult{Variant: tutorial.VariantExamples, Title: "Examples", Body: "e"},
		Code:     tutorial.SectionResult{Variant: tutorial.VariantCode, Title: "Code", Body: "c"},
	}
	return &orchestrator.Result{
		RunID:    "run-1",
		Topic:    "Linear Regression",
		State:    orchestrator.StateDone,
		Decision: &tutorial.ScopeDecision{InScope: true, Reason: "stats", Confidence: 0.9},
		Sections: &sections,
		Document: &doc,
	}
}

func TestMarkdown(t *testing.T) {
	got := Markdown(tutorial.TutorialDocument{Title: " LR ", Summary: "Short.", Content: "## Body\n"})
	assert.Equal(t, "# LR\n\n**Summary:** Short.\n\n## Body\n", got)
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"Linear Regression":      "linear_regression_tutorial.md",
		"  K-Means   Clustering ": "k-means_clustering_tutorial.md",
		"TCP/IP":                 "tcpip_tutorial.md",
		"../etc":                 "etc_tutorial.md",
		"???":                    "untitled_tutorial.md",
	}
	for in, want := range tests {
		assert.Equal(t, want, FileName(in, "md"), in)
	}
	assert.Equal(t, "pca_tutorial.html", FileName("PCA", ".html"))
}

func TestHTMLPage(t *testing.T) {
	page, err := HTMLPage(tutorial.TutorialDocument{
		Title:   "A <b> title",
		Summary: "s",
		Content: "```python\nx = 1\n```\n\n<script>alert(1)</script>\n\n| a |\n|---|\n| 1 |",
	})
	require.NoError(t, err)
	assert.Contains(t, page, "<title>A &lt;b&gt; title</title>")
	assert.Contains(t, page, `<code class="language-python">`)
	assert.Contains(t, page, "<table>")
	assert.NotContains(t, page, "<script>alert(1)</script>")
}

func TestJSON(t *testing.T) {
	data, err := JSON(doneResult(), fixedNow)
	require.NoError(t, err)

	var got TutorialExport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "2026-03-01T12:00:00Z", got.ExportedAt)
	require.Len(t, got.Sections, 3)
	assert.Equal(t, "theory", got.Sections[0].Variant)
	assert.Equal(t, "code", got.Sections[2].Variant)
	assert.Equal(t, "Linear Regression", got.Document.Title)
}

func TestBuildExport_RequiresDone(t *testing.T) {
	res := doneResult()
	res.State = orchestrator.StateFailed
	_, err := BuildExport(res, fixedNow)
	assert.ErrorIs(t, err, ErrIncomplete)

	_, err = BuildExport(nil, fixedNow)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := Write(dir, doneResult(), []string{"markdown", "html", "json"}, fixedNow)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "linear_regression_tutorial.md"),
		filepath.Join(dir, "linear_regression_tutorial.html"),
		filepath.Join(dir, "linear_regression_tutorial.json"),
	}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Linear Regression\n\n**Summary:** Fit a line to data.")
}

func TestWrite_Errors(t *testing.T) {
	_, err := Write(t.TempDir(), &orchestrator.Result{State: orchestrator.StateRejected}, []string{"markdown"}, fixedNow)
	assert.ErrorIs(t, err, ErrIncomplete)

	_, err = Write(t.TempDir(), doneResult(), []string{"pdf"}, fixedNow)
	assert.ErrorContains(t, err, `unknown format "pdf"`)
}
