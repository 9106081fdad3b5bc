// Package export renders a finished run into files: Markdown (the canonical
// artifact), standalone HTML and a JSON record of the whole run.
package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// Markdown renders doc as a single Markdown artifact: the title as a
// top-level heading, a summary callout, then the content.
func Markdown(doc tutorial.TutorialDocument) string {
	return fmt.Sprintf("# %s\n\n**Summary:** %s\n\n%s\n",
		strings.TrimSpace(doc.Title),
		strings.TrimSpace(doc.Summary),
		strings.TrimSpace(doc.Content))
}

var (
	unsafeNameRe = regexp.MustCompile(`[/\\:*?"<>|\x00]+`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// FileName returns the export file name for topic with extension ext, e.g.
// "linear_regression_tutorial.md".
func FileName(topic, ext string) string {
	name := strings.ToLower(strings.TrimSpace(topic))
	name = unsafeNameRe.ReplaceAllString(name, "")
	name = spaceRe.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.Trim(name, ".")
	if name == "" {
		name = "untitled"
	}
	return name + "_tutorial." + strings.TrimPrefix(ext, ".")
}
