package mcptools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/tutorgen/internal/agent"
	"github.com/dusk-indust/tutorgen/internal/backend"
	"github.com/dusk-indust/tutorgen/internal/orchestrator"
	"github.com/dusk-indust/tutorgen/internal/schema"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newService wires a TutorService onto b with output going to dir.
func newService(t *testing.T, b backend.Backend, dir string) *TutorService {
	t.Helper()
	pipeline, err := orchestrator.New(b, agent.Options{}, agent.NewRegistry("python"), orchestrator.Config{})
	require.NoError(t, err)
	return NewTutorService(pipeline, agent.NewScopeGate(b, agent.Options{}), Options{
		OutputDir: dir,
		Formats:   []string{"markdown", "json"},
		Now:       func() time.Time { return fixedNow },
	})
}

// setupServerClient starts the MCP server on in-memory transports and
// returns a connected client session.
func setupServerClient(t *testing.T, svc *TutorService) *mcp.ClientSession {
	t.Helper()
	server := NewServer(svc)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go server.Run(ctx, serverTransport)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "dev"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool[T any](t *testing.T, session *mcp.ClientSession, name string, args any) T {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, result.IsError, "%s should not return an error", name)
	require.NotNil(t, result.StructuredContent, "expected structured content from %s", name)

	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestServer_ToolsList(t *testing.T) {
	session := setupServerClient(t, newService(t, backend.NewOffline(), t.TempDir()))

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, len(tools.Tools))
	for i, tool := range tools.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)
	assert.Equal(t, []string{"classify_topic", "generate_tutorial", "list_tutorials"}, names)
}

func TestServer_GenerateTutorial_Done(t *testing.T) {
	dir := t.TempDir()
	session := setupServerClient(t, newService(t, backend.NewOffline(), dir))

	out := callTool[GenerateTutorialOutput](t, session, "generate_tutorial", GenerateTutorialInput{Topic: "Linear Regression"})
	assert.Equal(t, "done", out.State)
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, "A Practical Guide to Linear Regression", out.Title)
	assert.NotEmpty(t, out.Content)
	assert.NotEmpty(t, out.Summary)
	require.Len(t, out.Files, 2)
	assert.Equal(t, filepath.Join(dir, "linear_regression_tutorial.md"), out.Files[0])
	assert.FileExists(t, out.Files[0])
	assert.FileExists(t, out.Files[1])
}

func TestServer_GenerateTutorial_Rejected(t *testing.T) {
	dir := t.TempDir()
	session := setupServerClient(t, newService(t, backend.NewOffline(), dir))

	out := callTool[GenerateTutorialOutput](t, session, "generate_tutorial", GenerateTutorialInput{Topic: "Network Administration"})
	assert.Equal(t, "rejected", out.State)
	assert.Contains(t, out.Reason, "outside data-related scope")
	assert.Empty(t, out.Content)
	assert.Empty(t, out.Files)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected runs write nothing")
}

func TestServer_GenerateTutorial_FailedRunReportsCode(t *testing.T) {
	b := backend.NewScripted(map[string]backend.Reply{
		schema.NameScope:    {Output: `{"in_scope": true, "reason": "stats", "confidence": 0.9}`},
		schema.NameTheory:   {Output: `{"title": "T"}`},
		schema.NameExamples: {Output: `{"title": "E", "examples": "x"}`},
		schema.NameCode:     {Output: `{"title": "C", "code": "x"}`},
	})
	session := setupServerClient(t, newService(t, b, t.TempDir()))

	out := callTool[GenerateTutorialOutput](t, session, "generate_tutorial", GenerateTutorialInput{Topic: "Linear Regression"})
	assert.Equal(t, "failed", out.State)
	assert.Equal(t, schema.CodeValidationFailed, out.ErrorCode)
	assert.NotEmpty(t, out.Message)
	assert.Empty(t, out.Content)
	assert.Equal(t, 0, b.CallCount(schema.NameDocument))
}

func TestServer_ClassifyTopic(t *testing.T) {
	session := setupServerClient(t, newService(t, backend.NewOffline(), t.TempDir()))

	in := callTool[ClassifyTopicOutput](t, session, "classify_topic", ClassifyTopicInput{Topic: "Linear Regression"})
	assert.True(t, in.InScope)
	assert.NotEmpty(t, in.Reason)

	out := callTool[ClassifyTopicOutput](t, session, "classify_topic", ClassifyTopicInput{Topic: "Network Administration"})
	assert.False(t, out.InScope)
	assert.InDelta(t, 0.8, out.Confidence, 1e-9)
}

func TestServer_ListTutorials(t *testing.T) {
	dir := t.TempDir()
	session := setupServerClient(t, newService(t, backend.NewOffline(), dir))

	empty := callTool[ListTutorialsOutput](t, session, "list_tutorials", ListTutorialsInput{})
	assert.Equal(t, dir, empty.Dir)
	assert.Empty(t, empty.Tutorials)

	callTool[GenerateTutorialOutput](t, session, "generate_tutorial", GenerateTutorialInput{Topic: "Linear Regression"})

	listed := callTool[ListTutorialsOutput](t, session, "list_tutorials", ListTutorialsInput{Dir: dir})
	require.Len(t, listed.Tutorials, 1)
	assert.Equal(t, "linear_regression_tutorial.md", listed.Tutorials[0].Name)
	assert.Equal(t, "A Practical Guide to Linear Regression", listed.Tutorials[0].Title)
	assert.Contains(t, listed.Tutorials[0].Summary, "Linear Regression")
}

func TestTutorService_EmptyTopic(t *testing.T) {
	svc := newService(t, backend.NewOffline(), t.TempDir())

	_, _, err := svc.GenerateTutorial(context.Background(), nil, GenerateTutorialInput{Topic: "  "})
	require.Error(t, err)
	_, _, err = svc.ClassifyTopic(context.Background(), nil, ClassifyTopicInput{})
	require.Error(t, err)
}

func TestTutorService_ListWithoutDir(t *testing.T) {
	svc := newService(t, backend.NewOffline(), "")
	_, _, err := svc.ListTutorials(context.Background(), nil, ListTutorialsInput{})
	require.Error(t, err)
}

func TestServer_CallUnknownTool(t *testing.T) {
	session := setupServerClient(t, newService(t, backend.NewOffline(), t.TempDir()))

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "nonexistent_tool",
		Arguments: map[string]any{},
	})
	// Either a protocol error or IsError is acceptable.
	if err != nil {
		return
	}
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}
