package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dusk-indust/tutorgen/internal/backend"
	"github.com/dusk-indust/tutorgen/internal/orchestrator"
	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// ErrorBody is the error part of a response.
type ErrorBody struct {
	Code    string `json:"code"`
	Stage   string `json:"stage,omitempty"`
	Section string `json:"section,omitempty"`
	Message string `json:"message"`
}

// statusFor maps a run error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tutorial.ErrEmptyTopic):
		return http.StatusBadRequest
	case errors.Is(err, backend.ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		// Includes schema.ErrValidation.
		return http.StatusInternalServerError
	}
}

func errorBody(err error) *ErrorBody {
	body := &ErrorBody{Code: "PIPELINE_FAILED", Message: err.Error()}
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		body.Code = coded.Code()
	}
	if errors.Is(err, tutorial.ErrEmptyTopic) {
		body.Code = "INVALID_REQUEST"
	}
	var se *orchestrator.StageError
	if errors.As(err, &se) {
		body.Stage = se.Stage.String()
		if se.Variant != nil {
			body.Section = se.Variant.String()
		}
	}
	return body
}
