package responder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPResponder_Success(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"hi there"}`))
	}))
	defer srv.Close()

	r := NewHTTPResponder(srv.URL+"/chat", time.Second)
	reply, err := r.Respond(context.Background(), Request{
		Message:          "hello",
		SessionID:        "s-1",
		PsychologistType: "anxiety",
	})

	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)
	assert.Equal(t, Request{Message: "hello", SessionID: "s-1", PsychologistType: "anxiety"}, got)
}

func TestHTTPResponder_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"response":"x"}`, wantStatus: 500},
		{name: "malformed json", status: http.StatusOK, body: `not json`, wantStatus: 200},
		{name: "missing response field", status: http.StatusOK, body: `{"answer":"x"}`, wantStatus: 200},
		{name: "non-string response", status: http.StatusOK, body: `{"response":42}`, wantStatus: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPResponder(srv.URL, time.Second).Respond(context.Background(), Request{Message: "hello"})

			var upstream *UpstreamError
			require.True(t, errors.As(err, &upstream), "want UpstreamError, got %v", err)
			assert.Equal(t, tt.wantStatus, upstream.StatusCode)
		})
	}
}

func TestHTTPResponder_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPResponder(url, time.Second).Respond(context.Background(), Request{Message: "hello"})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "call", upstream.Op)
}

func TestHTTPResponder_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewHTTPResponder(srv.URL, 50*time.Millisecond).Respond(context.Background(), Request{Message: "hello"})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
