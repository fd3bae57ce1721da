package services

import (
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/mindspace/mindspace-backend/internal/persona"
	"github.com/mindspace/mindspace-backend/internal/repository"
	"github.com/mindspace/mindspace-backend/internal/responder"
)

// Services holds all service instances
type Services struct {
	Personas persona.Store
	Sessions *SessionService
	Chat     *ChatService
	Health   *HealthService
}

// NewServices creates all service instances
func NewServices(
	db *sqlx.DB,
	personas persona.Store,
	sessionRepo repository.SessionRepository,
	messageRepo repository.MessageRepository,
	r responder.Responder,
	group MemberCounter,
	logger *logrus.Logger,
) *Services {
	sessions := NewSessionService(sessionRepo, personas)

	return &Services{
		Personas: personas,
		Sessions: sessions,
		Chat:     NewChatService(sessions, messageRepo, r, logger),
		Health:   NewHealthService(db, group),
	}
}
