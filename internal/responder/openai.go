package responder

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/mindspace/mindspace-backend/internal/models"
	"github.com/mindspace/mindspace-backend/internal/persona"
)

// OpenAIResponder answers in the voice of the requested persona using the
// Chat Completions API.
type OpenAIResponder struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	personas persona.Store
}

// NewOpenAIResponder creates a responder. An empty baseURL keeps the
// client's default endpoint.
func NewOpenAIResponder(apiKey, baseURL, model string, timeout time.Duration, personas persona.Store) (*OpenAIResponder, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}

	return &OpenAIResponder{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		timeout:  timeout,
		personas: personas,
	}, nil
}

// Respond sends the persona prompt plus the user message and returns the
// first choice.
func (r *OpenAIResponder) Respond(ctx context.Context, req Request) (string, error) {
	p, ok := r.personas.FindByType(req.PsychologistType)
	if !ok {
		p, _ = r.personas.FindByType(models.DefaultPsychologistType)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: persona.SystemPrompt(p, "")},
			{Role: openai.ChatMessageRoleUser, Content: req.Message},
		},
		User: req.SessionID,
	})
	if err != nil {
		upstream := &UpstreamError{Op: "completion", Err: err}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			upstream.StatusCode = apiErr.HTTPStatusCode
		}
		return "", upstream
	}

	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Op: "completion", Err: errors.New("no choices returned")}
	}

	return resp.Choices[0].Message.Content, nil
}
