package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sampleprojects/postandcomments/internal/ai"
	"github.com/sampleprojects/postandcomments/internal/blog"
	"github.com/sampleprojects/postandcomments/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock metrics for testing
type MockMetrics struct {
	mu     sync.Mutex
	routes []string
}

func (m *MockMetrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, method+" "+path)
}

func (m *MockMetrics) Routes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.routes...)
}

type MockExplainer struct {
	mock.Mock
}

func (m *MockExplainer) ExplainPost(ctx context.Context, id int64, title string) (*ai.Explanation, error) {
	args := m.Called(ctx, id, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.Explanation), args.Error(1)
}

var _ Explainer = (*MockExplainer)(nil)

// testEnvelope mirrors Envelope with the payload left raw.
type testEnvelope struct {
	Status        int             `json:"status"`
	Message       string          `json:"message"`
	Payload       json.RawMessage `json:"payload"`
	AIPayload     *ai.Explanation `json:"aiPayload"`
	Success       bool            `json:"success"`
	Timestamp     string          `json:"timestamp"`
	Path          string          `json:"path"`
	TraceID       string          `json:"traceId"`
	Errors        []string        `json:"errors"`
	Meta          map[string]any  `json:"meta"`
	APIVersion    string          `json:"apiVersion"`
	CorrelationID string          `json:"correlationId"`
}

type testServer struct {
	handler http.Handler
	metrics *MockMetrics
}

func newTestServer(t *testing.T, explainer Explainer) *testServer {
	t.Helper()
	ctx := context.Background()

	database := db.NewInMemoryDatabase(nil)
	require.NoError(t, db.ConnectAndMigrate(ctx, database, true))
	t.Cleanup(func() { _ = database.Disconnect(ctx) })

	logger := zap.NewNop().Sugar()
	svc := Services{
		Posts:    blog.NewPostService(database, database.Posts(), database.Tags(), logger),
		Tags:     blog.NewTagService(database, database.Tags(), logger),
		Comments: blog.NewCommentService(database, database.Posts(), database.Comments(), logger),
		Details:  blog.NewDetailsService(database, database.Posts(), database.Details(), logger),
	}
	metrics := &MockMetrics{}
	h := NewHandler(svc, explainer, database, logger)

	return &testServer{
		handler: h.Routes(NewMiddleware(logger, metrics), []string{"http://localhost:3000"}, 60000),
		metrics: metrics,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	var env testEnvelope
	if strings.HasPrefix(path, "/api") && w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decodePayload[T any](t *testing.T, env testEnvelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Payload, &out), string(env.Payload))
	return out
}

func (s *testServer) createTag(t *testing.T, name string) *TagDTO {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/tags", TagRequest{Name: name})
	require.Contains(t, []int{http.StatusCreated, http.StatusOK}, w.Code, w.Body.String())
	return decodePayload[*TagDTO](t, env)
}

func (s *testServer) createPost(t *testing.T, title string, tagIDs ...int64) *PostDTO {
	t.Helper()
	req := PostRequest{Title: title}
	for _, id := range tagIDs {
		req.TagIDs = append(req.TagIDs, &id)
	}
	w, env := s.do(t, http.MethodPost, "/api/posts", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodePayload[*PostDTO](t, env)
}

func TestCreatePost_Success(t *testing.T) {
	srv := newTestServer(t, nil)

	w, env := srv.do(t, http.MethodPost, "/api/posts", map[string]any{"title": "Hello"})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusCreated, env.Status)
	assert.Equal(t, msgPostCreated, env.Message)
	assert.Equal(t, "/api/posts", env.Path)
	assert.Equal(t, APIVersion, env.APIVersion)
	assert.NotEmpty(t, env.TraceID)
	assert.Empty(t, env.Errors)
	assert.Nil(t, env.AIPayload)

	_, err := time.ParseInLocation(timestampLayout, env.Timestamp, time.Local)
	assert.NoError(t, err, "timestamp %q", env.Timestamp)

	require.NotEmpty(t, env.CorrelationID)
	assert.Equal(t, env.CorrelationID, w.Header().Get(CorrelationIDHeader))

	post := decodePayload[*PostDTO](t, env)
	assert.NotZero(t, post.ID)
	assert.Equal(t, "Hello", post.Title)
	assert.Empty(t, post.Tags)
	assert.Empty(t, post.Comments)
	assert.Nil(t, post.PostDetails)
}

func TestGetPost_NotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	w, env := srv.do(t, http.MethodGet, "/api/posts/999", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Post with id 999 not found", env.Message)
	assert.Equal(t, []string{"Post with id 999 not found"}, env.Errors)
	assert.Empty(t, env.Payload)
}

func TestPostIDValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	testCases := []struct {
		name    string
		method  string
		path    string
		body    any
		status  int
		message string
	}{
		{"null id on get", http.MethodGet, "/api/posts/0", nil, http.StatusBadRequest, "Post id cannot be null"},
		{"negative id on delete", http.MethodDelete, "/api/posts/-4", nil, http.StatusBadRequest, "Post id must be greater than 0"},
		{"non numeric id", http.MethodGet, "/api/posts/abc", nil, http.StatusBadRequest, msgValidationFailed},
		{"missing on update", http.MethodPut, "/api/posts/404", PostRequest{Title: "x"}, http.StatusNotFound, "Post with id 404 not found"},
		{"missing on delete", http.MethodDelete, "/api/posts/404", nil, http.StatusNotFound, "Post with id 404 not found"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := srv.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, tc.message, env.Message)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Errors)
		})
	}
}

func TestCreatePost_RequestValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	testCases := []struct {
		name     string
		body     any
		contains string
	}{
		{"blank title", map[string]any{"title": "   "}, "title: Title is required"},
		{"missing title", map[string]any{}, "title: Title is required"},
		{"long title", PostRequest{Title: string(bytes.Repeat([]byte("a"), blog.MaxTitleLength+1))}, "title: Title must be at most 255 characters"},
		{"malformed json", `{"title":`, "body: Malformed JSON"},
		{"empty body", nil, "body: Request body is required"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := srv.do(t, http.MethodPost, "/api/posts", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, msgValidationFailed, env.Message)
			require.Len(t, env.Errors, 1)
			assert.Contains(t, env.Errors[0], tc.contains)
		})
	}
}

func TestCreatePost_InvalidTagIDs(t *testing.T) {
	srv := newTestServer(t, nil)
	tag := srv.createTag(t, "golang")

	w, env := srv.do(t, http.MethodPost, "/api/posts",
		fmt.Sprintf(`{"title":"Tagged","tagIds":[%d,null,-1,999,null]}`, tag.ID))

	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "Invalid tag ids provided", env.Message)
	assert.ElementsMatch(t, []string{
		"Tag id cannot be null",
		"Tag id must be greater than 0, got -1",
		"Tag with id 999 not found",
	}, env.Errors)

	_, list := srv.do(t, http.MethodGet, "/api/posts", nil)
	assert.Empty(t, decodePayload[[]*PostDTO](t, list), "nothing is persisted")
}

func TestPostLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)

	golang := srv.createTag(t, "golang")
	sqlTag := srv.createTag(t, "sql")
	post := srv.createPost(t, "Graphs in Go", golang.ID, sqlTag.ID)
	require.Len(t, post.Tags, 2)

	w, env := srv.do(t, http.MethodPost, "/api/comments", map[string]any{"comment": "Great read", "postId": post.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := decodePayload[*PostCommentDTO](t, env)
	require.NotNil(t, comment.PostID)
	assert.Equal(t, post.ID, *comment.PostID)
	assert.Equal(t, "Great read", comment.Review)

	w, _ = srv.do(t, http.MethodPost, "/api/comments", map[string]any{"review": "Second", "postId": post.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env = srv.do(t, http.MethodPost, "/api/post-details", PostDetailsRequest{PostID: &post.ID, Description: "All about graphs"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	details := decodePayload[*PostDetailsDTO](t, env)
	assert.Equal(t, post.ID, details.PostID)

	w, env = srv.do(t, http.MethodPost, "/api/post-details", PostDetailsRequest{PostID: &post.ID, Description: "again"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, fmt.Sprintf("Post with id %d already has details", post.ID), env.Message)

	w, env = srv.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, msgPostRetrieved, env.Message)
	loaded := decodePayload[*PostDTO](t, env)
	assert.Len(t, loaded.Comments, 2)
	require.NotNil(t, loaded.PostDetails)
	assert.Equal(t, "All about graphs", loaded.PostDetails.Description)

	// Omitting tagIds keeps the tags; an empty list clears them.
	w, env = srv.do(t, http.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID), map[string]any{"title": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodePayload[*PostDTO](t, env)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Len(t, updated.Tags, 2)

	w, env = srv.do(t, http.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID), map[string]any{"title": "Renamed", "tagIds": []int64{}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decodePayload[*PostDTO](t, env).Tags)

	w, env = srv.do(t, http.MethodGet, fmt.Sprintf("/api/comments/post/%d", post.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodePayload[[]*PostCommentDTO](t, env), 2)

	w, env = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, msgPostDeleted, env.Message)
	assert.True(t, env.Success)
	assert.Empty(t, env.Payload)

	w, _ = srv.do(t, http.MethodGet, fmt.Sprintf("/api/comments/%d", comment.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "comments go with their post")
	w, _ = srv.do(t, http.MethodGet, fmt.Sprintf("/api/post-details/post/%d", post.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "details go with their post")
	w, _ = srv.do(t, http.MethodGet, fmt.Sprintf("/api/tags/%d", golang.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code, "tags outlive their posts")
}

func TestCreateTag_Idempotent(t *testing.T) {
	srv := newTestServer(t, nil)

	w, env := srv.do(t, http.MethodPost, "/api/tags", TagRequest{Name: "Java"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, msgTagCreated, env.Message)
	first := decodePayload[*TagDTO](t, env)

	w, env = srv.do(t, http.MethodPost, "/api/tags", TagRequest{Name: "JAVA"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, msgTagExists, env.Message)
	again := decodePayload[*TagDTO](t, env)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Java", again.Name)

	w, env = srv.do(t, http.MethodGet, "/api/tags/name/java", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first.ID, decodePayload[*TagDTO](t, env).ID)

	w, env = srv.do(t, http.MethodGet, "/api/tags/name/kotlin", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Tag with name kotlin not found", env.Message)
}

func TestListPosts_Pagination(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, title := range []string{"b", "c", "a"} {
		srv.createPost(t, title)
	}

	w, env := srv.do(t, http.MethodGet, "/api/posts?limit=2&offset=0&sort=title,asc", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	posts := decodePayload[[]*PostDTO](t, env)
	require.Len(t, posts, 2)
	assert.Equal(t, "a", posts[0].Title)
	assert.Equal(t, "b", posts[1].Title)
	assert.EqualValues(t, 3, env.Meta["total"])
	assert.EqualValues(t, 2, env.Meta["count"])
	assert.EqualValues(t, 2, env.Meta["limit"])
	assert.EqualValues(t, 0, env.Meta["offset"])

	w, env = srv.do(t, http.MethodGet, "/api/posts?sort=title,desc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c", decodePayload[[]*PostDTO](t, env)[0].Title)

	w, _ = srv.do(t, http.MethodGet, "/api/posts?sort=secret,asc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = srv.do(t, http.MethodGet, "/api/posts?limit=-1&offset=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, env.Errors, 2)
}

func TestLegacyRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	w, env := srv.do(t, http.MethodPost, "/api/v1/post/create", PostRequest{Title: "Legacy"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decodePayload[*PostDTO](t, env)

	w, env = srv.do(t, http.MethodGet, "/api/v1/post/get/all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodePayload[[]*PostDTO](t, env), 1)

	w, _ = srv.do(t, http.MethodPost, "/api/v1/post-detail/create", PostDetailsRequest{PostID: &post.ID, Description: "legacy details"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/post-detail/get/post/%d", post.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "legacy details", decodePayload[*PostDetailsDTO](t, env).Description)

	w, _ = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/post/delete/%d", post.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIncludeAI(t *testing.T) {
	t.Run("explanation attached", func(t *testing.T) {
		explainer := &MockExplainer{}
		srv := newTestServer(t, explainer)
		post := srv.createPost(t, "Concurrency patterns")

		explainer.On("ExplainPost", mock.Anything, post.ID, "Concurrency patterns").Return(&ai.Explanation{
			ResourceType: "Post",
			ResourceID:   post.ID,
			Title:        "Concurrency patterns",
			Explanation:  "A tour of goroutines and channels.",
		}, nil).Once()

		w, env := srv.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d?includeAi=true", post.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, env.AIPayload)
		assert.Equal(t, "A tour of goroutines and channels.", env.AIPayload.Explanation)
		assert.Empty(t, env.Errors)
		explainer.AssertExpectations(t)
	})

	t.Run("failure keeps the payload", func(t *testing.T) {
		explainer := &MockExplainer{}
		srv := newTestServer(t, explainer)
		explainer.On("ExplainPost", mock.Anything, mock.Anything, "Hello").Return(nil, errors.New("model overloaded")).Once()

		w, env := srv.do(t, http.MethodPost, "/api/posts?includeAi=true", PostRequest{Title: "Hello"})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Success)
		assert.Nil(t, env.AIPayload)
		require.Len(t, env.Errors, 1)
		assert.Contains(t, env.Errors[0], "model overloaded")
		assert.Equal(t, "Hello", decodePayload[*PostDTO](t, env).Title)
	})

	t.Run("not requested", func(t *testing.T) {
		explainer := &MockExplainer{}
		srv := newTestServer(t, explainer)
		srv.createPost(t, "Quiet")
		explainer.AssertNotCalled(t, "ExplainPost", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not configured", func(t *testing.T) {
		srv := newTestServer(t, nil)
		w, env := srv.do(t, http.MethodPost, "/api/posts?includeAi=true", PostRequest{Title: "Hello"})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Nil(t, env.AIPayload)
		require.Len(t, env.Errors, 1)
		assert.Contains(t, env.Errors[0], ai.ErrDisabled.Error())
	})
}

func TestCommentValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	w, env := srv.do(t, http.MethodPost, "/api/comments", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.ElementsMatch(t, []string{"comment: Comment is required", "postId: Post id is required"}, env.Errors)

	w, env = srv.do(t, http.MethodPost, "/api/comments", map[string]any{"comment": "hi", "postId": 77})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post with id 77 not found", env.Message)

	w, _ = srv.do(t, http.MethodGet, "/api/comments/post/77", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	w, _ := srv.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w, _ = srv.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var health HealthDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "up", health.Database)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, nil)

	w, env := srv.do(t, http.MethodGet, "/api/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "/api/nothing-here", env.Path)
}
