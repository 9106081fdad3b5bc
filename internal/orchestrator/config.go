package orchestrator

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/dusk-indust/tutorgen/internal/logger"
)

// Config holds runtime settings shared by every run of a Pipeline.
type Config struct {
	// RunTimeout bounds a whole run. Zero means no bound beyond the
	// caller's context.
	RunTimeout time.Duration

	// Plan fixes the section order. Zero value means DefaultMergePlan.
	Plan MergePlan

	// Linter, when set, inspects each generated section. Its findings
	// become warnings on the result.
	Linter Linter

	// Logger defaults to a no-op logger.
	Logger *logger.Logger

	// Tracer defaults to the global tracer named TracerName.
	Tracer trace.Tracer

	// NewRunID defaults to uuid.NewString.
	NewRunID func() string
}
