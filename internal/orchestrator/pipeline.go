package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dusk-indust/tutorgen/internal/agent"
	"github.com/dusk-indust/tutorgen/internal/backend"
	"github.com/dusk-indust/tutorgen/internal/logger"
	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// TracerName is the instrumentation scope used for run spans.
const TracerName = "github.com/dusk-indust/tutorgen/internal/orchestrator"

// Compile-time interface check.
var _ Orchestrator = (*Pipeline)(nil)

// Pipeline sequences scope gate, fan-out, fan-in and consolidation. It holds
// no per-run state and is safe for concurrent runs.
type Pipeline struct {
	gate         Classifier
	generators   []agent.SectionGenerator
	consolidator Consolidator
	merger       *Merger
	cfg          Config
	log          *logger.Logger
	tracer       trace.Tracer
}

// NewPipeline wires a pipeline from its collaborators. There must be exactly
// one generator per variant in the merge plan.
func NewPipeline(gate Classifier, generators []agent.SectionGenerator, consolidator Consolidator, cfg Config) (*Pipeline, error) {
	if gate == nil || consolidator == nil {
		return nil, errors.New("pipeline: scope gate and consolidator are required")
	}
	if len(cfg.Plan.SectionOrder) == 0 {
		cfg.Plan = DefaultMergePlan
	}
	if err := cfg.Plan.validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	byVariant := make(map[tutorial.Variant]bool, len(generators))
	for _, g := range generators {
		if byVariant[g.Variant()] {
			return nil, fmt.Errorf("pipeline: two generators for %s", g.Variant())
		}
		byVariant[g.Variant()] = true
	}
	for _, v := range cfg.Plan.SectionOrder {
		if !byVariant[v] {
			return nil, fmt.Errorf("pipeline: no generator for %s", v)
		}
	}
	if len(generators) != len(cfg.Plan.SectionOrder) {
		return nil, fmt.Errorf("pipeline: %d generators for %d planned sections", len(generators), len(cfg.Plan.SectionOrder))
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(TracerName)
	}
	if cfg.NewRunID == nil {
		cfg.NewRunID = uuid.NewString
	}

	return &Pipeline{
		gate:         gate,
		generators:   generators,
		consolidator: consolidator,
		merger:       NewMerger(cfg.Plan),
		cfg:          cfg,
		log:          cfg.Logger,
		tracer:       cfg.Tracer,
	}, nil
}

// New builds a pipeline whose every call goes to b.
func New(b backend.Backend, opts agent.Options, reg *agent.Registry, cfg Config) (*Pipeline, error) {
	if opts.Logger == nil {
		opts.Logger = cfg.Logger
	}
	if opts.Tracer == nil {
		opts.Tracer = cfg.Tracer
	}
	gens, err := reg.SpawnAll(b, opts)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return NewPipeline(agent.NewScopeGate(b, opts), gens, agent.NewConsolidator(b, opts), cfg)
}

// run is the mutable state of a single Run call.
type run struct {
	sm     *StateMachine
	res    *Result
	em     *emitter
	log    *logger.Logger
	span   trace.Span
	failed *StageError
}

// Run executes one pipeline run. A rejected topic returns a Result in
// StateRejected and a nil error. Any failure returns the Result in
// StateFailed together with a *StageError; no document is ever returned from
// a failed run. onProgress is never called after Run returns.
func (p *Pipeline) Run(ctx context.Context, topicText string, onProgress func(ProgressEvent)) (*Result, error) {
	topic, err := tutorial.NewTopic(topicText)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	if p.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.RunTimeout)
		defer cancel()
	}

	runID := p.cfg.NewRunID()
	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("topic", topic.String()),
	))
	defer span.End()

	r := &run{
		sm:   NewStateMachine(),
		res:  &Result{RunID: runID, Topic: topic.String()},
		em:   newEmitter(runID, onProgress),
		log:  p.log.With("run_id", runID, "topic", topic.String()),
		span: span,
	}
	defer r.em.stop()

	start := time.Now()
	r.log.Info("run started")
	p.execute(ctx, r, topic)

	r.res.State = r.sm.State()
	r.res.History = r.sm.History()
	span.SetAttributes(attribute.String("state", r.res.State.String()))
	r.log.Info("run finished", "state", r.res.State, "duration", time.Since(start))

	if r.failed != nil {
		return r.res, r.failed
	}
	return r.res, nil
}

func (p *Pipeline) execute(ctx context.Context, r *run, topic tutorial.Topic) {
	if !p.advance(r, StateClassifying) {
		return
	}
	r.em.marker(MarkerScopeCheck, "")

	decision, err := p.gate.Classify(ctx, topic)
	if err != nil {
		p.fail(r, stageErr(StateClassifying, nil, err))
		return
	}
	r.res.Decision = &decision
	r.log.Info("scope decided", "in_scope", decision.InScope, "confidence", decision.Confidence)

	if !decision.InScope {
		if p.advance(r, StateRejected) {
			r.em.finish(MarkerRejected, decision.Reason)
		}
		return
	}

	if !p.advance(r, StateGenerating) {
		return
	}
	r.em.marker(MarkerGenerating, "")

	results, err := NewFanOut(p.generators, r.em.emit).Run(ctx, topic)
	if err != nil {
		p.fail(r, stageErr(StateGenerating, nil, err))
		return
	}
	sections, err := p.merger.Merge(results)
	if err != nil {
		p.fail(r, stageErr(StateGenerating, nil, err))
		return
	}
	var warnings []string
	if p.cfg.Linter != nil {
		for _, s := range sections.Ordered() {
			warnings = append(warnings, p.cfg.Linter.Lint(s)...)
		}
	}

	if !p.advance(r, StateConsolidating) {
		return
	}
	r.em.marker(MarkerConsolidating, "")

	doc, err := p.consolidator.Consolidate(ctx, topic, sections)
	if err != nil {
		p.fail(r, stageErr(StateConsolidating, nil, err))
		return
	}
	if err := doc.Validate(); err != nil {
		p.fail(r, stageErr(StateConsolidating, nil, err))
		return
	}

	for _, issue := range CheckCoverage(sections, doc) {
		warnings = append(warnings, issue.String())
	}
	for _, w := range warnings {
		r.log.Warn("tutorial warning", "warning", w)
	}

	if !p.advance(r, StateDone) {
		return
	}
	r.res.Sections = &sections
	r.res.Document = &doc
	r.res.Warnings = warnings
	r.em.finish(MarkerDone, "")
}

// advance moves the run to state to. An illegal move fails the run.
func (p *Pipeline) advance(r *run, to State) bool {
	from := r.sm.State()
	if err := r.sm.Transition(to); err != nil {
		p.fail(r, &StageError{Stage: from, Err: err})
		return false
	}
	return true
}

func (p *Pipeline) fail(r *run, err *StageError) {
	from := r.sm.State()
	if CanTransition(from, StateFailed) {
		_ = r.sm.Transition(StateFailed)
	}
	r.failed = err
	r.res.Err = err
	r.res.Sections = nil
	r.res.Document = nil

	r.span.RecordError(err)
	r.span.SetStatus(codes.Error, err.Stage.String())
	r.log.Error("run failed", "stage", err.Stage, "error", err)
	r.em.finish(MarkerError, err.Error())
}
