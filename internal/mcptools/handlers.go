package mcptools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/tutorgen/internal/export"
	"github.com/dusk-indust/tutorgen/internal/library"
	"github.com/dusk-indust/tutorgen/internal/logger"
	"github.com/dusk-indust/tutorgen/internal/orchestrator"
	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// Options configures a TutorService.
type Options struct {
	// OutputDir receives exports of finished runs and is the default
	// directory for list_tutorials. Empty disables writing.
	OutputDir string
	Formats   []string
	Logger    *logger.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// TutorService handles MCP tool calls. It wraps an Orchestrator for full
// runs and a Classifier for scope-only checks.
type TutorService struct {
	pipeline orchestrator.Orchestrator
	gate     orchestrator.Classifier
	opts     Options
}

// NewTutorService creates a TutorService.
func NewTutorService(pipeline orchestrator.Orchestrator, gate orchestrator.Classifier, opts Options) *TutorService {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &TutorService{pipeline: pipeline, gate: gate, opts: opts}
}

// GenerateTutorial runs the pipeline for one topic. Rejections and run
// failures are reported in the output, not as tool errors.
func (s *TutorService) GenerateTutorial(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateTutorialInput,
) (*mcp.CallToolResult, GenerateTutorialOutput, error) {
	if _, err := tutorial.NewTopic(input.Topic); err != nil {
		return nil, GenerateTutorialOutput{}, err
	}

	res, err := s.pipeline.Run(ctx, input.Topic, func(ev orchestrator.ProgressEvent) {
		s.opts.Logger.Debug("mcp progress", "run_id", ev.RunID, "marker", ev.Marker, "section", ev.Section, "status", ev.Status)
	})
	if res == nil {
		return nil, GenerateTutorialOutput{}, err
	}

	out := GenerateTutorialOutput{RunID: res.RunID, State: res.State.String()}
	if res.Decision != nil {
		out.Reason = res.Decision.Reason
		out.Confidence = res.Decision.Confidence
	}
	if err != nil {
		out.Message = err.Error()
		out.ErrorCode = errorCode(err)
		return nil, out, nil
	}
	if res.Document == nil {
		return nil, out, nil
	}

	out.Title = res.Document.Title
	out.Summary = res.Document.Summary
	out.Content = res.Document.Content
	out.Warnings = res.Warnings

	if s.opts.OutputDir != "" {
		files, werr := export.Write(s.opts.OutputDir, res, s.opts.Formats, s.opts.Now())
		out.Files = files
		if werr != nil {
			s.opts.Logger.Warn("export failed", "run_id", res.RunID, "error", werr)
			out.Message = werr.Error()
		}
	}
	return nil, out, nil
}

// ClassifyTopic runs only the scope gate.
func (s *TutorService) ClassifyTopic(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClassifyTopicInput,
) (*mcp.CallToolResult, ClassifyTopicOutput, error) {
	topic, err := tutorial.NewTopic(input.Topic)
	if err != nil {
		return nil, ClassifyTopicOutput{}, err
	}
	decision, err := s.gate.Classify(ctx, topic)
	if err != nil {
		return nil, ClassifyTopicOutput{}, fmt.Errorf("classify topic: %w", err)
	}
	return nil, ClassifyTopicOutput{
		InScope:    decision.InScope,
		Reason:     decision.Reason,
		Confidence: decision.Confidence,
	}, nil
}

// ListTutorials scans an output directory for exported tutorials.
func (s *TutorService) ListTutorials(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListTutorialsInput,
) (*mcp.CallToolResult, ListTutorialsOutput, error) {
	dir := input.Dir
	if dir == "" {
		dir = s.opts.OutputDir
	}
	if dir == "" {
		return nil, ListTutorialsOutput{}, errors.New("list tutorials: no directory given and no output dir configured")
	}

	entries, err := library.Scan(dir)
	if err != nil {
		return nil, ListTutorialsOutput{}, err
	}

	out := ListTutorialsOutput{Dir: dir, Tutorials: []TutorialSummary{}}
	for _, e := range entries {
		out.Tutorials = append(out.Tutorials, TutorialSummary{
			Name:    e.Name,
			Path:    e.Path,
			Title:   e.Title,
			Summary: e.Summary,
		})
	}
	return nil, out, nil
}

func errorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}
