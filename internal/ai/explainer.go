package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const postPrompt = "You are an assistant for a Posts & Comments API. " +
	"Explain this blog post in simple, clear language (3-5 sentences). " +
	"Focus on the main idea, audience, and tone.\n\nTitle: %s"

// callTimeout bounds a model call, which may outlive the request that
// started it while other requests wait on the result.
const callTimeout = 30 * time.Second

// ErrDisabled is returned when no model client is configured.
var ErrDisabled = errors.New("AI explanations are not configured")

// ErrEmptyResponse is returned when the model answers without content.
var ErrEmptyResponse = errors.New("AI model returned no explanation")

// ChatCompleter is the part of the OpenAI client the explainer needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// MetricsRecorder records the outcome of model calls.
type MetricsRecorder interface {
	RecordAIRequest(ctx context.Context, resource string, duration time.Duration, err error)
}

// Explanation is the AI payload attached to a response envelope.
type Explanation struct {
	ResourceType string `json:"resourceType"`
	ResourceID   int64  `json:"resourceId"`
	Title        string `json:"title"`
	Explanation  string `json:"explanation"`
}

type Explainer struct {
	client  ChatCompleter
	model   string
	logger  *zap.SugaredLogger
	metrics MetricsRecorder

	// concurrent requests for the same post share one model call
	inflight singleflight.Group
}

func NewExplainer(client ChatCompleter, model string, logger *zap.SugaredLogger, metrics MetricsRecorder) *Explainer {
	return &Explainer{
		client:  client,
		model:   model,
		logger:  logger,
		metrics: metrics,
	}
}

// NewClient builds an OpenAI compatible client. baseURL may point at any
// server speaking the chat completions API.
func NewClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// ExplainPost asks the model for a short plain-language explanation of a
// post. One request is made; failures are returned as is. Callers asking
// about the same post and title while a request is running wait for it
// and get the same result. A caller whose ctx ends stops waiting without
// cancelling the call for the others.
func (e *Explainer) ExplainPost(ctx context.Context, id int64, title string) (*Explanation, error) {
	if e == nil || e.client == nil {
		return nil, ErrDisabled
	}

	key := fmt.Sprintf("post:%d:%s", id, title)
	ch := e.inflight.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), callTimeout)
		defer cancel()
		return e.explainPost(callCtx, id, title)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("explain post %d: %w", id, ctx.Err())
	case res := <-ch:
		if res.Shared {
			e.logger.Debugw("AI explanation shared", "post_id", id)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Explanation), nil
	}
}

func (e *Explainer) explainPost(ctx context.Context, id int64, title string) (*Explanation, error) {
	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(postPrompt, title)},
		},
	})
	if err == nil && (len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "") {
		err = ErrEmptyResponse
	}
	if e.metrics != nil {
		e.metrics.RecordAIRequest(ctx, "Post", time.Since(start), err)
	}
	if err != nil {
		e.logger.Warnw("AI explanation failed", "post_id", id, "model", e.model, "error", err)
		return nil, fmt.Errorf("explain post %d: %w", id, err)
	}

	e.logger.Debugw("AI explanation generated", "post_id", id, "model", e.model, "duration", time.Since(start))
	return &Explanation{
		ResourceType: "Post",
		ResourceID:   id,
		Title:        title,
		Explanation:  strings.TrimSpace(resp.Choices[0].Message.Content),
	}, nil
}
