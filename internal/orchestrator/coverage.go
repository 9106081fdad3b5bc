package orchestrator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// codeBlockRe matches fenced code blocks (``` ... ```) and captures the body.
var codeBlockRe = regexp.MustCompile("(?s)```[^\\n]*\\n(.*?)```")

// CoverageIssue is a gap between the generated sections and the document.
type CoverageIssue struct {
	Section     string
	Description string
}

func (i CoverageIssue) String() string {
	return fmt.Sprintf("%s: %s", i.Section, i.Description)
}

// CheckCoverage performs a lightweight scan of the consolidated document
// against its inputs. It flags code blocks from the code section whose first
// statement no longer appears in the document, and a document shorter than
// the longest section it was built from. Issues never fail a run.
func CheckCoverage(sections tutorial.SectionSet, doc tutorial.TutorialDocument) []CoverageIssue {
	var issues []CoverageIssue

	code := sections.Code
	blocks := codeBlockRe.FindAllStringSubmatch(code.Body, -1)
	if len(blocks) > 0 && !strings.Contains(doc.Content, "```") {
		issues = append(issues, CoverageIssue{
			Section:     code.Variant.String(),
			Description: fmt.Sprintf("%d code block(s) generated but the document has none", len(blocks)),
		})
	} else {
		for i, b := range blocks {
			line := firstLine(b[1])
			if line == "" || strings.Contains(doc.Content, line) {
				continue
			}
			issues = append(issues, CoverageIssue{
				Section:     code.Variant.String(),
				Description: fmt.Sprintf("code block %d (%q) missing from document", i+1, line),
			})
		}
	}

	longest := tutorial.SectionResult{}
	for _, s := range sections.Ordered() {
		if len(s.Body) > len(longest.Body) {
			longest = s
		}
	}
	if len(doc.Content) < len(longest.Body) {
		issues = append(issues, CoverageIssue{
			Section: longest.Variant.String(),
			Description: fmt.Sprintf("document content (%d bytes) is shorter than the %s section (%d bytes)",
				len(doc.Content), longest.Variant, len(longest.Body)),
		})
	}

	return issues
}

// firstLine returns the first non-blank line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
