package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mindspace/mindspace-backend/internal/models"
)

// EventType represents the type of audit event
type EventType string

const (
	EventLogin          EventType = "user.login"
	EventLogout         EventType = "user.logout"
	EventSignup         EventType = "user.signup"
	EventPasswordChange EventType = "user.password_change"
	EventAccountDelete  EventType = "user.delete"
	EventSessionCreate  EventType = "session.create"
	EventSessionEnd     EventType = "session.end"
	EventChatTurn       EventType = "chat.turn"
)

// Results recorded on events
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Recorder writes audit events without failing the caller
type Recorder interface {
	Record(ctx context.Context, event *Event)
}

// Event represents an audit event
type Event struct {
	ID           uuid.UUID `json:"id"`
	EventType    EventType `json:"event_type"`
	UserID       *string   `json:"user_id,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	ResourceType string    `json:"resource_type,omitempty"`
	ResourceID   string    `json:"resource_id,omitempty"`
	Result       string    `json:"result,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository defines the interface for audit log persistence
type Repository interface {
	Log(ctx context.Context, log *models.AuditLog) error
	GetByUserID(ctx context.Context, userID string, limit int) ([]*models.AuditLog, error)
}

// Service implements the audit logger
type Service struct {
	repo   Repository
	logger *logrus.Logger
}

// NewService creates a new audit service
func NewService(repo Repository, logger *logrus.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Log stores an audit event
func (s *Service) Log(ctx context.Context, event *Event) error {
	entry := &models.AuditLog{
		ID:           event.ID,
		UserID:       event.UserID,
		Action:       string(event.EventType),
		ResourceType: event.ResourceType,
		ResourceID:   event.ResourceID,
		IPAddress:    event.IPAddress,
		UserAgent:    event.UserAgent,
		Status:       event.Result,
		ErrorMessage: event.Error,
		CreatedAt:    event.CreatedAt,
	}
	return s.repo.Log(ctx, entry)
}

// Record stores an event and only logs a failure
func (s *Service) Record(ctx context.Context, event *Event) {
	if err := s.Log(ctx, event); err != nil {
		s.logger.WithError(err).WithField("event", event.EventType).Warn("Failed to write audit log")
	}
}

// GetUserEvents retrieves audit events for a specific user
func (s *Service) GetUserEvents(ctx context.Context, userID string, limit int) ([]*Event, error) {
	logs, err := s.repo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	events := make([]*Event, len(logs))
	for i, log := range logs {
		events[i] = &Event{
			ID:           log.ID,
			EventType:    EventType(log.Action),
			UserID:       log.UserID,
			IPAddress:    log.IPAddress,
			UserAgent:    log.UserAgent,
			ResourceType: log.ResourceType,
			ResourceID:   log.ResourceID,
			Result:       log.Status,
			Error:        log.ErrorMessage,
			CreatedAt:    log.CreatedAt,
		}
	}

	return events, nil
}

// NewEvent creates an event stamped with a fresh id and the current time
func NewEvent(eventType EventType, userID *string, ipAddress, userAgent string) *Event {
	return &Event{
		ID:        uuid.New(),
		EventType: eventType,
		UserID:    userID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Result:    ResultSuccess,
		CreatedAt: time.Now().UTC(),
	}
}
