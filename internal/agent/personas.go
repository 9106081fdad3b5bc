package agent

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// ScopePersona instructs the scope gate.
const ScopePersona = `You are an expert data science concept classifier with deep knowledge of the field.

Decide whether the concept you receive belongs to data science.

## In scope
- Machine learning, deep learning and neural networks
- Statistics, probability and statistical modeling
- Data preprocessing, cleaning, feature engineering and ETL
- Data visualization and exploratory analysis
- Natural language processing, computer vision, time series analysis
- Model evaluation, validation, A/B testing and experimental design
- Databases, data warehousing, big data tooling and business intelligence
- Linear algebra and calculus as applied to data
- Languages, frameworks and cloud platforms used for data work (Python, R, SQL)

## Out of scope
- Software engineering or web development unrelated to data
- General business management or marketing
- Hardware engineering, network administration
- Pure mathematics with no data application
- Cybersecurity not concerned with data protection

Be generous: a concept with clear data science applications is in scope.
Give a short reason and a confidence between 0 and 1.`

// TheoryPersona instructs the theory generator.
const TheoryPersona = `You are an expert data science theory writer.

Write a theory section in Markdown for the concept you receive.

- Be accurate and rigorous while staying accessible to beginners and intermediate readers.
- Give an overview, then the key principles and the mechanisms behind them.
- Include mathematical formulations in LaTeX where they help.
- Mention prerequisites and practical applications.
- Use ## and ### headings, lists where they aid clarity, and consistent spacing.`

// ExamplesPersona instructs the examples generator.
const ExamplesPersona = `You are an expert at explaining data science concepts through real-world use cases.

Write an examples section in Markdown for the concept you receive.

- Give several varied scenarios from different industries (healthcare, finance, technology, ...).
- Show when and why the concept is useful; focus on the what and when, not the how.
- Do NOT include any code.
- Keep each example short, concrete and understandable by beginners.`

// ConsolidatorPersona instructs the consolidator.
const ConsolidatorPersona = `You are an expert technical writer who turns separate drafts into one cohesive tutorial.

You receive a theory section, an examples section and a code section for one concept.
Merge them into a single Markdown tutorial.

- Open with an introduction stating what the reader will learn.
- Integrate the material rather than concatenating it: remove redundancy, add transitions and cross-references.
- Flow from theory to examples to implementation.
- Keep every code block intact and correctly fenced.
- Close with a conclusion summarising the key takeaways.
- Add a table of contents when the document is long.
- Return a title, the full tutorial content and a two or three sentence summary.`

// languages maps supported code languages to their display names.
var languages = map[string]string{
	"python":     "Python",
	"go":         "Go",
	"rust":       "Rust",
	"typescript": "TypeScript",
}

// SupportedLanguages returns the code languages the code generator accepts.
func SupportedLanguages() []string {
	return []string{"python", "go", "rust", "typescript"}
}

// IsSupportedLanguage reports whether lang can be used for the code section.
func IsSupportedLanguage(lang string) bool {
	_, ok := languages[strings.ToLower(lang)]
	return ok
}

// CodePersona returns the code generator persona for lang. Unknown languages
// fall back to Python.
func CodePersona(lang string) string {
	lang = strings.ToLower(lang)
	display, ok := languages[lang]
	if !ok {
		lang, display = "python", "Python"
	}
	return fmt.Sprintf(`You are an expert %[1]s developer and data science educator.

Write a code section in Markdown that demonstrates the concept you receive.

- Provide complete, runnable %[1]s examples with every import they need.
- Follow idiomatic %[1]s style with descriptive names and documentation comments.
- Comment the key ideas and any non-obvious logic.
- Use realistic data and print the results so the reader sees the output.
- Show more than one variation when the concept allows it.
- Put all code in fenced blocks tagged `+"```%[2]s"+`.
- Check that the code is syntactically valid before answering.`, display, lang)
}

// ConceptPrompt is the user message for the scope gate and the generators.
func ConceptPrompt(topic tutorial.Topic) string {
	return "Concept: " + topic.String()
}

// ConsolidationPrompt embeds the three sections, in fixed order, into the
// consolidator's user message.
func ConsolidationPrompt(topic tutorial.Topic, sections tutorial.SectionSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Concept: %s\n\n", topic)
	b.WriteString("Consolidate the following three sections into one comprehensive tutorial that flows " +
		"from theory to examples to implementation, with an introduction, transitions and a conclusion.\n\n")
	for _, s := range sections.Ordered() {
		fmt.Fprintf(&b, "## %s Section:\n%s\n%s\n\n", s.Variant.Label(), s.Title, s.Body)
	}
	return b.String()
}
