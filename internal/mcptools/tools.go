package mcptools

// --- MCP tool types for tutorgen serve-mcp ---

// GenerateTutorialInput is the input for the generate_tutorial MCP tool.
type GenerateTutorialInput struct {
	Topic string `json:"topic" jsonschema:"concept to write a tutorial about, e.g. linear regression"`
}

// GenerateTutorialOutput is the result of the generate_tutorial MCP tool.
type GenerateTutorialOutput struct {
	RunID      string   `json:"runId"`
	State      string   `json:"state"` // "done", "rejected" or "failed"
	Title      string   `json:"title,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Content    string   `json:"content,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	Files      []string `json:"files,omitempty"`
	ErrorCode  string   `json:"errorCode,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// ClassifyTopicInput is the input for the classify_topic MCP tool.
type ClassifyTopicInput struct {
	Topic string `json:"topic" jsonschema:"topic to classify"`
}

// ClassifyTopicOutput is the result of the classify_topic MCP tool.
type ClassifyTopicOutput struct {
	InScope    bool    `json:"inScope"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// ListTutorialsInput is the input for the list_tutorials MCP tool.
type ListTutorialsInput struct {
	Dir string `json:"dir,omitempty" jsonschema:"directory of exported tutorials (default: configured output dir)"`
}

// ListTutorialsOutput is the result of the list_tutorials MCP tool.
type ListTutorialsOutput struct {
	Dir       string            `json:"dir"`
	Tutorials []TutorialSummary `json:"tutorials"`
}

// TutorialSummary is a brief overview of one exported tutorial.
type TutorialSummary struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
}
