package models

import "time"

const (
	DefaultPsychologistType = "general"
	DefaultLanguage         = "english"
)

// Session is a persisted conversation context binding a user to a persona
// and a language.
type Session struct {
	ID               string    `json:"id" db:"id"`
	UserID           *string   `json:"user_id,omitempty" db:"user_id"`
	PsychologistType string    `json:"psychologist_type" db:"psychologist_type"`
	Language         string    `json:"language" db:"language"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	IsActive         bool      `json:"is_active" db:"is_active"`
}

// ChatMessage is one turn, human or AI, within a session's history.
type ChatMessage struct {
	ID               string    `json:"id" db:"id"`
	SessionID        string    `json:"session_id" db:"session_id"`
	Message          string    `json:"message" db:"message"`
	IsUser           bool      `json:"is_user" db:"is_user"`
	Timestamp        time.Time `json:"timestamp" db:"sent_at"`
	PsychologistType string    `json:"psychologist_type" db:"psychologist_type"`
}
