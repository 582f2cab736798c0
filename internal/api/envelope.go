package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sampleprojects/postandcomments/internal/ai"
	"go.opentelemetry.io/otel/trace"
)

const (
	APIVersion      = "1.0.0"
	timestampLayout = "2006-01-02T15:04:05.000"
)

// Envelope wraps every JSON response the API writes.
type Envelope struct {
	Status        int             `json:"status"`
	Message       string          `json:"message"`
	Payload       any             `json:"payload,omitempty"`
	AIPayload     *ai.Explanation `json:"aiPayload,omitempty"`
	Success       bool            `json:"success"`
	Timestamp     string          `json:"timestamp"`
	Path          string          `json:"path"`
	TraceID       string          `json:"traceId"`
	Errors        []string        `json:"errors,omitempty"`
	Meta          map[string]any  `json:"meta,omitempty"`
	APIVersion    string          `json:"apiVersion"`
	CorrelationID string          `json:"correlationId"`
}

func newEnvelope(r *http.Request, status int, message string) *Envelope {
	ctx := r.Context()
	correlationID := CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return &Envelope{
		Status:        status,
		Message:       message,
		Success:       status < http.StatusBadRequest,
		Timestamp:     time.Now().Format(timestampLayout),
		Path:          r.URL.Path,
		TraceID:       traceID(ctx),
		APIVersion:    APIVersion,
		CorrelationID: correlationID,
	}
}

func successEnvelope(r *http.Request, status int, message string, payload any) *Envelope {
	env := newEnvelope(r, status, message)
	env.Payload = payload
	return env
}

func errorEnvelope(r *http.Request, status int, message string, errs []string) *Envelope {
	env := newEnvelope(r, status, message)
	if len(errs) == 0 {
		errs = []string{message}
	}
	env.Errors = errs
	return env
}

// traceID prefers the active span's trace id so log lines, traces and
// response bodies can be joined.
func traceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return uuid.NewString()
}

func writeEnvelope(w http.ResponseWriter, env *Envelope) {
	writeJSON(w, env.Status, env)
}
