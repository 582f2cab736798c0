package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

type recordedCall struct {
	resource string
	err      error
}

type MockMetrics struct {
	calls []recordedCall
}

func (m *MockMetrics) RecordAIRequest(ctx context.Context, resource string, duration time.Duration, err error) {
	m.calls = append(m.calls, recordedCall{resource: resource, err: err})
}

func answer(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	}
}

func TestExplainPost(t *testing.T) {
	client := &MockChatCompleter{}
	metrics := &MockMetrics{}
	explainer := NewExplainer(client, "gpt-4o-mini", zap.NewNop().Sugar(), metrics)

	client.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == "gpt-4o-mini" &&
			len(req.Messages) == 1 &&
			req.Messages[0].Role == openai.ChatMessageRoleUser &&
			strings.HasSuffix(req.Messages[0].Content, "Title: Hello")
	})).Return(answer("  A friendly greeting post.  "), nil)

	got, err := explainer.ExplainPost(context.Background(), 1, "Hello")
	require.NoError(t, err)

	assert.Equal(t, &Explanation{
		ResourceType: "Post",
		ResourceID:   1,
		Title:        "Hello",
		Explanation:  "A friendly greeting post.",
	}, got)

	body, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"resourceType":"Post","resourceId":1,"title":"Hello","explanation":"A friendly greeting post."}`, string(body))

	require.Len(t, metrics.calls, 1)
	assert.NoError(t, metrics.calls[0].err)
	client.AssertExpectations(t)
}

func TestExplainPost_Failures(t *testing.T) {
	testCases := []struct {
		name    string
		resp    openai.ChatCompletionResponse
		err     error
		wantErr error
	}{
		{name: "client error", err: errors.New("429 too many requests")},
		{name: "no choices", resp: openai.ChatCompletionResponse{}, wantErr: ErrEmptyResponse},
		{name: "blank content", resp: answer("   "), wantErr: ErrEmptyResponse},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := &MockChatCompleter{}
			metrics := &MockMetrics{}
			explainer := NewExplainer(client, "m", zap.NewNop().Sugar(), metrics)
			client.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(tc.resp, tc.err).Once()

			_, err := explainer.ExplainPost(context.Background(), 2, "t")
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			require.Len(t, metrics.calls, 1)
			assert.Error(t, metrics.calls[0].err)
			client.AssertNumberOfCalls(t, "CreateChatCompletion", 1)
		})
	}
}

func TestExplainPost_Disabled(t *testing.T) {
	var explainer *Explainer
	_, err := explainer.ExplainPost(context.Background(), 1, "x")
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = NewExplainer(nil, "m", zap.NewNop().Sugar(), nil).ExplainPost(context.Background(), 1, "x")
	assert.ErrorIs(t, err, ErrDisabled)
}

// blockingCompleter answers every call once release is closed.
type blockingCompleter struct {
	calls   atomic.Int32
	release chan struct{}
}

func (b *blockingCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	b.calls.Add(1)
	select {
	case <-b.release:
		return answer("Shared explanation."), nil
	case <-ctx.Done():
		return openai.ChatCompletionResponse{}, ctx.Err()
	}
}

func TestExplainPost_CoalescesConcurrentCalls(t *testing.T) {
	client := &blockingCompleter{release: make(chan struct{})}
	explainer := NewExplainer(client, "gpt-4o-mini", zap.NewNop().Sugar(), nil)

	const callers = 5
	results := make([]*Explanation, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := explainer.ExplainPost(context.Background(), 7, "Go tips")
			assert.NoError(t, err)
			results[i] = got
		}()
	}

	require.Eventually(t, func() bool { return client.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond) // let the other callers join the running request
	close(client.release)
	wg.Wait()

	assert.Equal(t, int32(1), client.calls.Load())
	for _, got := range results {
		require.NotNil(t, got)
		assert.Equal(t, "Shared explanation.", got.Explanation)
	}
}

func TestExplainPost_FirstCallerCancelled(t *testing.T) {
	client := &blockingCompleter{release: make(chan struct{})}
	explainer := NewExplainer(client, "gpt-4o-mini", zap.NewNop().Sugar(), nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()

	errA := make(chan error, 1)
	go func() {
		_, err := explainer.ExplainPost(ctxA, 1, "Hello")
		errA <- err
	}()
	require.Eventually(t, func() bool { return client.calls.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		got *Explanation
		err error
	}
	resB := make(chan result, 1)
	go func() {
		got, err := explainer.ExplainPost(context.Background(), 1, "Hello")
		resB <- result{got, err}
	}()
	time.Sleep(50 * time.Millisecond) // let the second caller join the running request

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(client.release)
	select {
	case res := <-resB:
		require.NoError(t, res.err)
		assert.Equal(t, "Shared explanation.", res.got.Explanation)
	case <-time.After(time.Second):
		t.Fatal("second caller never got a result")
	}
	assert.Equal(t, int32(1), client.calls.Load())
}
