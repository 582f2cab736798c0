package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sampleprojects/postandcomments/internal/blog"
	"github.com/sampleprojects/postandcomments/internal/db/interfaces"
)

const (
	msgValidationFailed = "Validation failed"
	msgUnexpected       = "An unexpected error occurred"
)

// RequestError is a request that could not be bound or failed field
// validation before reaching a service.
type RequestError struct {
	Errors []string
}

func (e *RequestError) Error() string {
	return msgValidationFailed + ": " + strings.Join(e.Errors, "; ")
}

func badRequest(problems ...string) *RequestError {
	return &RequestError{Errors: problems}
}

// writeServiceError is the single place where errors become HTTP
// responses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound   *blog.NotFoundError
		validation *blog.ValidationError
		request    *RequestError
		env        *Envelope
	)

	switch {
	case errors.As(err, &notFound):
		env = errorEnvelope(r, http.StatusNotFound, notFound.Error(), nil)
	case errors.As(err, &validation):
		env = errorEnvelope(r, http.StatusBadRequest, validation.Message, validation.Errors)
	case errors.As(err, &request):
		env = errorEnvelope(r, http.StatusBadRequest, msgValidationFailed, request.Errors)
	case errors.Is(err, interfaces.ErrInvalidQuery), errors.Is(err, blog.ErrInvalidArgument):
		env = errorEnvelope(r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, interfaces.ErrUniqueConstraint):
		env = errorEnvelope(r, http.StatusBadRequest, msgValidationFailed, []string{err.Error()})
	default:
		env = errorEnvelope(r, http.StatusInternalServerError, msgUnexpected, []string{err.Error()})
	}

	if env.Status >= http.StatusInternalServerError {
		h.logger.Errorw("API error",
			"status", env.Status,
			"path", r.URL.Path,
			"correlation_id", env.CorrelationID,
			"error", err,
		)
	} else {
		h.logger.Debugw("Request rejected",
			"status", env.Status,
			"path", r.URL.Path,
			"correlation_id", env.CorrelationID,
			"error", err,
		)
	}

	writeEnvelope(w, env)
}
