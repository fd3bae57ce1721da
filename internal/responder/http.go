package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const jsonContentType = "application/json"

// maxReplyBytes caps how much of an upstream body is read.
const maxReplyBytes = 1 << 20

// HTTPResponder posts the request as JSON to an external responder service
// and expects {"response": "..."} back.
type HTTPResponder struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
}

// NewHTTPResponder creates a responder for the service at url. Each call is
// bounded by timeout.
func NewHTTPResponder(url string, timeout time.Duration) *HTTPResponder {
	return &HTTPResponder{
		url:        url,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

type httpReply struct {
	Response *string `json:"response"`
}

// Respond performs one POST and returns the reply text.
func (r *HTTPResponder) Respond(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode responder request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", &UpstreamError{Op: "request", Err: err}
	}
	httpReq.Header.Set("Content-Type", jsonContentType)
	httpReq.Header.Set("Accept", jsonContentType)

	res, err := r.httpClient.Do(httpReq)
	if err != nil {
		return "", &UpstreamError{Op: "call", Err: err}
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(res.Body, maxReplyBytes))
	if err != nil {
		return "", &UpstreamError{Op: "read", StatusCode: res.StatusCode, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &UpstreamError{
			Op:         "call",
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", res.Status),
		}
	}

	var reply httpReply
	if err := json.Unmarshal(payload, &reply); err != nil {
		return "", &UpstreamError{Op: "decode", StatusCode: res.StatusCode, Err: err}
	}
	if reply.Response == nil {
		return "", &UpstreamError{
			Op:         "decode",
			StatusCode: res.StatusCode,
			Err:        errors.New(`reply has no "response" field`),
		}
	}

	return *reply.Response, nil
}
