package orchestrator

import (
	"errors"
	"fmt"

	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// StageError reports which stage of a run failed, and for the generating
// stage which section.
type StageError struct {
	Stage State
	// Variant is set when a single section generator failed.
	Variant *tutorial.Variant
	Err     error
}

func (e *StageError) Error() string {
	if e.Variant != nil {
		return fmt.Sprintf("pipeline: %s (%s): %v", e.Stage, e.Variant, e.Err)
	}
	return fmt.Sprintf("pipeline: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Code returns the error code of the underlying failure, if it has one.
func (e *StageError) Code() string {
	var coded interface{ Code() string }
	if errors.As(e.Err, &coded) {
		return coded.Code()
	}
	return "PIPELINE_FAILED"
}

func stageErr(stage State, v *tutorial.Variant, err error) *StageError {
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	return &StageError{Stage: stage, Variant: v, Err: err}
}
