// Package responder produces persona replies for a chat turn, either by
// calling an external responder service or a language model API.
package responder

import (
	"context"
	"fmt"
)

// Request is the payload forwarded for one chat turn.
type Request struct {
	Message          string `json:"message"`
	SessionID        string `json:"session_id"`
	PsychologistType string `json:"psychologist_type"`
}

// Responder returns the AI reply text for a request.
type Responder interface {
	Respond(ctx context.Context, req Request) (string, error)
}

// UpstreamError reports that the responder could not produce a usable reply.
type UpstreamError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("responder %s: upstream status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("responder %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
