package responder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindspace/mindspace-backend/internal/persona"
)

func newCompletionServer(t *testing.T, handler func(req openai.ChatCompletionRequest) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		status, body := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIResponder_RequiresKey(t *testing.T) {
	_, err := NewOpenAIResponder("", "", "gpt-3.5-turbo", time.Second, persona.NewMemoryStore(persona.Catalog()))
	assert.Error(t, err)
}

func TestOpenAIResponder_Respond(t *testing.T) {
	var captured openai.ChatCompletionRequest
	srv := newCompletionServer(t, func(req openai.ChatCompletionRequest) (int, string) {
		captured = req
		return http.StatusOK, `{"id":"c1","object":"chat.completion","model":"gpt-3.5-turbo",
			"choices":[{"index":0,"message":{"role":"assistant","content":"breathe slowly"},"finish_reason":"stop"}]}`
	})

	r, err := NewOpenAIResponder("key", srv.URL, "gpt-3.5-turbo", time.Second, persona.NewMemoryStore(persona.Catalog()))
	require.NoError(t, err)

	reply, err := r.Respond(context.Background(), Request{Message: "I feel panicky", SessionID: "s-1", PsychologistType: "anxiety"})
	require.NoError(t, err)
	assert.Equal(t, "breathe slowly", reply)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "Dr. Sarah")
	assert.Equal(t, "I feel panicky", captured.Messages[1].Content)
	assert.Equal(t, "gpt-3.5-turbo", captured.Model)
}

func TestOpenAIResponder_UnknownPersonaFallsBackToGeneral(t *testing.T) {
	var system string
	srv := newCompletionServer(t, func(req openai.ChatCompletionRequest) (int, string) {
		system = req.Messages[0].Content
		return http.StatusOK, `{"choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`
	})

	r, err := NewOpenAIResponder("key", srv.URL, "gpt-3.5-turbo", time.Second, persona.NewMemoryStore(persona.Catalog()))
	require.NoError(t, err)

	_, err = r.Respond(context.Background(), Request{Message: "hi", PsychologistType: "unknown"})
	require.NoError(t, err)
	assert.Contains(t, system, "Dr. Alex")
}

func TestOpenAIResponder_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		srv := newCompletionServer(t, func(openai.ChatCompletionRequest) (int, string) {
			return http.StatusServiceUnavailable, `{"error":{"message":"overloaded","type":"server_error"}}`
		})
		r, err := NewOpenAIResponder("key", srv.URL, "gpt-3.5-turbo", time.Second, persona.NewMemoryStore(persona.Catalog()))
		require.NoError(t, err)

		_, err = r.Respond(context.Background(), Request{Message: "hi"})
		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
	})

	t.Run("no choices", func(t *testing.T) {
		srv := newCompletionServer(t, func(openai.ChatCompletionRequest) (int, string) {
			return http.StatusOK, `{"id":"c1","choices":[]}`
		})
		r, err := NewOpenAIResponder("key", srv.URL, "gpt-3.5-turbo", time.Second, persona.NewMemoryStore(persona.Catalog()))
		require.NoError(t, err)

		_, err = r.Respond(context.Background(), Request{Message: "hi"})
		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
	})
}
