package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced session does not exist
var ErrNotFound = errors.New("not found")

// ValidationError reports a request the service refuses to act on
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrSessionInactive is returned for chat turns against an ended session
var ErrSessionInactive = &ValidationError{Field: "session_id", Message: "session is no longer active"}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
