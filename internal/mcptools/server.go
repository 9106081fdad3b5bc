package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewServer creates an MCP server with the 3 tutorial tools registered:
// generate_tutorial, classify_topic and list_tutorials.
func NewServer(svc *TutorService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "tutorgen",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_tutorial",
		Description: "Generate a data science tutorial (theory, examples and code) for a topic. Out-of-scope topics are rejected with a reason. Returns the consolidated Markdown tutorial and any files written.",
	}, svc.GenerateTutorial)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify_topic",
		Description: "Decide whether a topic belongs to data science, without generating a tutorial.",
	}, svc.ClassifyTopic)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tutorials",
		Description: "List previously exported Markdown tutorials with their titles and summaries.",
	}, svc.ListTutorials)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP server over streamable HTTP at addr until ctx is
// cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
