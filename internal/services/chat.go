package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mindspace/mindspace-backend/internal/models"
	"github.com/mindspace/mindspace-backend/internal/repository"
	"github.com/mindspace/mindspace-backend/internal/responder"
)

// ChatService runs chat turns and serves history
type ChatService struct {
	sessions    *SessionService
	messageRepo repository.MessageRepository
	responder   responder.Responder
	logger      *logrus.Logger
}

// NewChatService creates a new chat service
func NewChatService(sessions *SessionService, messageRepo repository.MessageRepository, r responder.Responder, logger *logrus.Logger) *ChatService {
	return &ChatService{
		sessions:    sessions,
		messageRepo: messageRepo,
		responder:   r,
		logger:      logger,
	}
}

// TurnInput is one user message addressed to a session
type TurnInput struct {
	SessionID        string
	Message          string
	PsychologistType string
}

// Turn stores the user message, asks the responder for a reply and stores
// that too. When the responder fails the user message stays stored and the
// *responder.UpstreamError is returned.
func (s *ChatService) Turn(ctx context.Context, in TurnInput) (string, error) {
	if _, err := uuid.Parse(in.SessionID); err != nil {
		return "", invalid("session_id", "must be a UUID")
	}
	if strings.TrimSpace(in.Message) == "" {
		return "", invalid("message", "must not be empty")
	}

	session, err := s.sessions.Get(ctx, in.SessionID)
	if err != nil {
		return "", err
	}
	if !session.IsActive {
		return "", ErrSessionInactive
	}

	psychologistType := in.PsychologistType
	if psychologistType == "" {
		psychologistType = session.PsychologistType
	}
	if _, ok := s.sessions.personas.FindByType(psychologistType); !ok {
		return "", invalid("psychologist_type", fmt.Sprintf("unknown psychologist type %q", psychologistType))
	}

	userMessage := &models.ChatMessage{
		SessionID:        session.ID,
		Message:          in.Message,
		IsUser:           true,
		PsychologistType: psychologistType,
	}
	if err := s.messageRepo.Create(ctx, userMessage); err != nil {
		return "", fmt.Errorf("failed to save user message: %w", err)
	}

	reply, err := s.responder.Respond(ctx, responder.Request{
		Message:          in.Message,
		SessionID:        session.ID,
		PsychologistType: psychologistType,
	})
	if err != nil {
		s.logger.WithError(err).WithField("session_id", session.ID).Warn("Responder call failed")
		return "", err
	}

	aiMessage := &models.ChatMessage{
		SessionID:        session.ID,
		Message:          reply,
		IsUser:           false,
		PsychologistType: psychologistType,
	}
	if err := s.messageRepo.Create(ctx, aiMessage); err != nil {
		return "", fmt.Errorf("failed to save reply: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":        session.ID,
		"psychologist_type": psychologistType,
	}).Debug("Chat turn completed")

	return reply, nil
}

// History returns the messages of a session oldest first. Unknown sessions
// have an empty history.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return []models.ChatMessage{}, nil
	}
	return s.messageRepo.ListBySession(ctx, sessionID)
}
