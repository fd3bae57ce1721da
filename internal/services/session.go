package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mindspace/mindspace-backend/internal/models"
	"github.com/mindspace/mindspace-backend/internal/persona"
	"github.com/mindspace/mindspace-backend/internal/repository"
)

// SessionService manages therapy sessions
type SessionService struct {
	sessionRepo repository.SessionRepository
	personas    persona.Store
}

// NewSessionService creates a new session service
func NewSessionService(sessionRepo repository.SessionRepository, personas persona.Store) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		personas:    personas,
	}
}

// CreateSessionInput carries the caller-supplied session fields
type CreateSessionInput struct {
	UserID           *string
	PsychologistType string
	Language         string
}

// Create opens a new active session, defaulting persona and language
func (s *SessionService) Create(ctx context.Context, in CreateSessionInput) (*models.Session, error) {
	session := &models.Session{
		UserID:           in.UserID,
		PsychologistType: in.PsychologistType,
		Language:         in.Language,
		IsActive:         true,
	}
	if session.PsychologistType == "" {
		session.PsychologistType = models.DefaultPsychologistType
	}
	if session.Language == "" {
		session.Language = models.DefaultLanguage
	}
	if _, ok := s.personas.FindByType(session.PsychologistType); !ok {
		return nil, invalid("psychologist_type", fmt.Sprintf("unknown psychologist type %q", session.PsychologistType))
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Get retrieves a session by ID
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}

	session, err := s.sessionRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// ListByUser returns the sessions a user created, newest first
func (s *SessionService) ListByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	return s.sessionRepo.ListByUser(ctx, userID)
}

// End marks a session inactive. Ending an ended session is a no-op.
func (s *SessionService) End(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return session, nil
	}

	if err := s.sessionRepo.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to end session: %w", err)
	}
	session.IsActive = false
	return session, nil
}
