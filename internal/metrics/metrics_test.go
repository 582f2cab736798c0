package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestSetupExposesInstruments(t *testing.T) {
	m, handler, err := Setup("posts-api-test")
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordHTTPRequest(ctx, "GET", "/api/posts", 200, 12*time.Millisecond)
	m.RecordAIRequest(ctx, "Post", time.Second, nil)
	m.RecordAIRequest(ctx, "Post", time.Second, errors.New("boom"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "blog_http_requests_total")
	assert.Contains(t, string(body), "blog_ai_requests_total")
	assert.Contains(t, string(body), "blog_ai_errors_total")
}

func TestSetupTracing(t *testing.T) {
	provider := SetupTracing("posts-api-test")
	defer provider.Shutdown(context.Background())

	_, span := provider.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	sc := trace.SpanContextFromContext(trace.ContextWithSpan(context.Background(), span))
	assert.True(t, sc.IsValid())
	assert.True(t, sc.TraceID().IsValid())
}
