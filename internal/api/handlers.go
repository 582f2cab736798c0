package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sampleprojects/postandcomments/internal/ai"
	"github.com/sampleprojects/postandcomments/internal/blog"
	"github.com/sampleprojects/postandcomments/internal/db/entities"
	"github.com/sampleprojects/postandcomments/internal/db/interfaces"
	"github.com/sampleprojects/postandcomments/internal/db/query"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Explainer produces the optional AI payload of post responses.
type Explainer interface {
	ExplainPost(ctx context.Context, id int64, title string) (*ai.Explanation, error)
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
}

type Services struct {
	Posts    *blog.PostService
	Tags     *blog.TagService
	Comments *blog.CommentService
	Details  *blog.DetailsService
}

type Handler struct {
	posts     *blog.PostService
	tags      *blog.TagService
	comments  *blog.CommentService
	details   *blog.DetailsService
	explainer Explainer
	health    HealthChecker
	logger    *zap.SugaredLogger
}

// NewHandler wires the services into HTTP handlers. explainer may be nil,
// in which case includeAi requests report the feature as unavailable.
func NewHandler(svc Services, explainer Explainer, health HealthChecker, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		posts:     svc.Posts,
		tags:      svc.Tags,
		comments:  svc.Comments,
		details:   svc.Details,
		explainer: explainer,
		health:    health,
		logger:    logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil && !h.health.IsHealthy(r.Context()) {
		writeJSON(w, http.StatusServiceUnavailable, HealthDTO{Status: "not_ready", Database: "down"})
		return
	}
	writeJSON(w, http.StatusOK, HealthDTO{Status: "ready", Database: "up"})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, errorEnvelope(r, http.StatusNotFound, "Resource not found", nil))
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	msg := fmt.Sprintf("Method %s is not supported for this resource", r.Method)
	writeEnvelope(w, errorEnvelope(r, http.StatusMethodNotAllowed, msg, nil))
}

// attachExplanation adds the AI payload when the client asked for it. A
// failed explanation never fails the request; it is reported in errors.
func (h *Handler) attachExplanation(r *http.Request, env *Envelope, post *entities.Post) {
	if !wantsExplanation(r) {
		return
	}
	if h.explainer == nil {
		env.Errors = append(env.Errors, "AI explanation unavailable: "+ai.ErrDisabled.Error())
		return
	}
	exp, err := h.explainer.ExplainPost(r.Context(), post.ID, post.Title)
	if err != nil {
		env.Errors = append(env.Errors, "AI explanation unavailable: "+err.Error())
		return
	}
	env.AIPayload = exp
}

func wantsExplanation(r *http.Request) bool {
	include, err := strconv.ParseBool(r.URL.Query().Get("includeAi"))
	return err == nil && include
}

// Utility methods
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return badRequest("body: Request body is required")
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("body: Request body is required")
		}
		return badRequest("body: Malformed JSON: " + err.Error())
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, badRequest(fmt.Sprintf("%s: must be a number, got %q", name, raw))
	}
	return id, nil
}

// listQuery reads limit, offset and repeated sort=field,dir parameters.
func listQuery(r *http.Request) (*interfaces.Query, error) {
	values := r.URL.Query()
	q := &interfaces.Query{}

	var problems []string
	for _, p := range []struct {
		name string
		dst  **int
	}{{"limit", &q.Limit}, {"offset", &q.Offset}} {
		raw := values.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			problems = append(problems, p.name+": must be a non-negative integer")
			continue
		}
		*p.dst = &n
	}
	if len(problems) > 0 {
		return nil, badRequest(problems...)
	}

	order, err := interfaces.ParseSort(values["sort"])
	if err != nil {
		return nil, err
	}
	q.OrderBy = order
	return q, nil
}

func listMeta(q *interfaces.Query, total int64, count int) map[string]any {
	meta := map[string]any{"total": total, "count": count}
	if q.Limit != nil {
		meta["limit"] = min(*q.Limit, query.MaxLimit)
	}
	if q.Offset != nil {
		meta["offset"] = *q.Offset
	}
	return meta
}
