package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dusk-indust/tutorgen/internal/backend"
	"github.com/dusk-indust/tutorgen/internal/schema"
)

// Call is one reusable generation step: a persona and a contract bound to a
// backend. It keeps no state between invocations.
type Call[T schema.Validator] struct {
	role     Role
	persona  string
	contract *schema.Contract[T]
	backend  backend.Backend
	opts     Options
}

// NewCall builds a Call. The backend is required.
func NewCall[T schema.Validator](role Role, persona string, contract *schema.Contract[T], b backend.Backend, opts Options) *Call[T] {
	return &Call[T]{
		role:     role,
		persona:  persona,
		contract: contract,
		backend:  b,
		opts:     opts.withDefaults(),
	}
}

// Role returns the role the call was built for.
func (c *Call[T]) Role() Role { return c.role }

// Invoke sends content to the backend and decodes the reply through the
// contract. Failures are *backend.UnavailableError, *schema.ValidationError or
// the context error of ctx when the caller gave up.
func (c *Call[T]) Invoke(ctx context.Context, content string) (T, error) {
	var zero T
	attempts := c.opts.Retry.attempts()

	for attempt := 1; ; attempt++ {
		out, err := c.attempt(ctx, content, attempt)
		if err == nil {
			return out, nil
		}
		if attempt >= attempts || ctx.Err() != nil || !backend.IsRetryable(err) {
			return zero, fmt.Errorf("%s call: %w", c.role, err)
		}

		wait := c.opts.Retry.Backoff * time.Duration(attempt)
		c.opts.Logger.Warn("generation call failed, retrying",
			"role", c.role, "attempt", attempt, "backoff", wait, "error", err)
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%s call: %w", c.role, ctx.Err())
		case <-time.After(wait):
		}
	}
}

func (c *Call[T]) attempt(ctx context.Context, content string, attempt int) (T, error) {
	var zero T

	ctx, span := c.opts.Tracer.Start(ctx, "agent.call", trace.WithAttributes(
		attribute.String("role", string(c.role)),
		attribute.Int("attempt", attempt),
		attribute.String("schema", c.contract.Name()),
	))
	defer span.End()

	callCtx := ctx
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := c.backend.Generate(callCtx, backend.Request{
		Instructions: c.persona,
		Content:      content,
		SchemaName:   c.contract.Name(),
		Schema:       c.contract.WireSchema(),
	})
	log := c.opts.Logger.With("role", c.role, "attempt", attempt, "duration", time.Since(start))

	if err != nil {
		err = c.classify(ctx, callCtx, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "backend")
		log.Warn("generation call failed", "error", err)
		return zero, err
	}

	out, err := c.contract.Decode(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "schema")
		log.Warn("generation output rejected", "error", err)
		return zero, err
	}
	log.Debug("generation call complete")
	return out, nil
}

// classify keeps the caller's cancellation distinct from a per-call timeout,
// which counts as the backend being unavailable.
func (c *Call[T]) classify(parent, callCtx context.Context, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return &backend.UnavailableError{
			Backend:   string(c.role),
			Retryable: true,
			Err:       fmt.Errorf("no response within %s", c.opts.Timeout),
		}
	}
	if errors.Is(err, backend.ErrUnavailable) {
		return err
	}
	return &backend.UnavailableError{Backend: string(c.role), Err: err}
}
