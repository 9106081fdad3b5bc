package main

import (
	"fmt"

	"github.com/dusk-indust/tutorgen/internal/agent"
	"github.com/dusk-indust/tutorgen/internal/backend"
	"github.com/dusk-indust/tutorgen/internal/codecheck"
	"github.com/dusk-indust/tutorgen/internal/config"
	"github.com/dusk-indust/tutorgen/internal/orchestrator"
)

// newBackend builds the configured generation backend.
func (a *app) newBackend() (backend.Backend, error) {
	b := a.cfg.Backend
	if b.Provider == config.ProviderOffline {
		return backend.NewOffline(), nil
	}
	return backend.NewOpenAI(backend.Settings{
		Provider:    b.Provider,
		Model:       b.Model,
		APIKey:      b.APIKey,
		BaseURL:     b.BaseURL,
		Temperature: b.Temperature,
	})
}

func (a *app) agentOptions() agent.Options {
	return agent.Options{
		Timeout: a.cfg.Backend.CallTimeout,
		Retry: agent.RetryPolicy{
			MaxAttempts: a.cfg.Backend.MaxAttempts,
			Backoff:     a.cfg.Backend.RetryBackoff,
		},
		Logger: a.log,
	}
}

// linter returns the code checker when linting is on and available. A
// missing checker disables linting with a warning.
func (a *app) linter() orchestrator.Linter {
	if !a.cfg.LintEnabled() {
		return nil
	}
	checker, err := codecheck.New(a.cfg.Pipeline.CodeLanguage)
	if err != nil {
		a.log.Warn("code lint disabled", "error", err)
		return nil
	}
	return checker
}

// services bundles what the run-oriented commands need.
type services struct {
	backend  backend.Backend
	pipeline *orchestrator.Pipeline
	gate     *agent.ScopeGate
}

func (a *app) newServices() (*services, error) {
	b, err := a.newBackend()
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	opts := a.agentOptions()
	pipeline, err := orchestrator.New(b, opts, agent.NewRegistry(a.cfg.Pipeline.CodeLanguage), orchestrator.Config{
		RunTimeout: a.cfg.Pipeline.RunTimeout,
		Linter:     a.linter(),
		Logger:     a.log,
	})
	if err != nil {
		return nil, err
	}
	return &services{
		backend:  b,
		pipeline: pipeline,
		gate:     agent.NewScopeGate(b, opts),
	}, nil
}
