// Package agent implements the generation calls of a run: the scope gate, the
// three section generators and the consolidator. Each is a fixed persona bound
// to a schema contract and invoked through Call.
package agent

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dusk-indust/tutorgen/internal/logger"
)

// Role identifies a specialist agent type.
type Role string

const (
	RoleScopeGate    Role = "scope-gate"
	RoleTheory       Role = "theory"
	RoleExamples     Role = "examples"
	RoleCode         Role = "code"
	RoleConsolidator Role = "consolidator"
)

// TracerName is the instrumentation scope used for call spans.
const TracerName = "github.com/dusk-indust/tutorgen/internal/agent"

// RetryPolicy bounds how often a call is attempted. Only retryable backend
// failures are retried; schema failures never are.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts. Values below 1 mean 1.
	MaxAttempts int
	// Backoff is multiplied by the attempt number before each retry.
	Backoff time.Duration
}

// NoRetry is the default policy: one attempt.
var NoRetry = RetryPolicy{MaxAttempts: 1}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Options carries the settings shared by every call.
type Options struct {
	// Timeout bounds a single backend request. Zero means no per-call limit.
	Timeout time.Duration
	Retry   RetryPolicy
	Logger  *logger.Logger
	Tracer  trace.Tracer
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	if o.Tracer == nil {
		o.Tracer = otel.Tracer(TracerName)
	}
	if o.Retry.MaxAttempts < 1 {
		o.Retry.MaxAttempts = 1
	}
	return o
}
