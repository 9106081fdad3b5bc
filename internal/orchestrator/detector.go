package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/dusk-indust/tutorgen/internal/backend"
	"github.com/dusk-indust/tutorgen/internal/logger"
)

// Readiness describes what a pipeline can do in the current environment.
type Readiness struct {
	// Backend is nil when the generation backend answered the probe.
	Backend error
	// CodeLint is true when syntax checking of code sections is available.
	CodeLint bool
}

// Ready reports whether runs can be started.
func (r Readiness) Ready() bool { return r.Backend == nil }

// Detector probes the generation backend and optional features.
type Detector interface {
	Detect(ctx context.Context) Readiness
}

// Compile-time check.
var _ Detector = (*DefaultDetector)(nil)

// DefaultDetector probes a backend with a bounded timeout.
type DefaultDetector struct {
	backend      backend.Backend
	lintProbe    func() bool
	probeTimeout time.Duration
	log          *logger.Logger
}

// NewDefaultDetector creates a detector for b. lintProbe reports whether code
// linting is compiled in; it may be nil.
func NewDefaultDetector(b backend.Backend, lintProbe func() bool, log *logger.Logger) *DefaultDetector {
	if log == nil {
		log = logger.Nop()
	}
	return &DefaultDetector{
		backend:      b,
		lintProbe:    lintProbe,
		probeTimeout: 10 * time.Second,
		log:          log,
	}
}

// Detect probes the backend if it supports probing and checks code lint
// availability. Backends without a probe are assumed reachable.
func (d *DefaultDetector) Detect(ctx context.Context) Readiness {
	r := Readiness{CodeLint: d.probeCodeLint()}

	if p, ok := d.backend.(backend.Prober); ok {
		probeCtx, cancel := context.WithTimeout(ctx, d.probeTimeout)
		defer cancel()
		if err := p.Probe(probeCtx); err != nil {
			r.Backend = fmt.Errorf("probe backend: %w", err)
		}
	}

	d.log.Info("detector", "backend_ready", r.Backend == nil, "code_lint", r.CodeLint)
	return r
}

// probeCodeLint is best effort: a panicking probe means the feature is off.
func (d *DefaultDetector) probeCodeLint() (ok bool) {
	if d.lintProbe == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("code lint probe panicked", "panic", r)
			ok = false
		}
	}()
	return d.lintProbe()
}
