package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mindspace/mindspace-backend/internal/models"
	"github.com/mindspace/mindspace-backend/internal/repository"
)

// MessageRepository implements repository.MessageRepository using sqlx
type MessageRepository struct {
	db    *sqlx.DB
	clock *repository.Clock
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *sqlx.DB, clock *repository.Clock) *MessageRepository {
	return &MessageRepository{db: db, clock: clock}
}

// Create assigns id and timestamp, then inserts the message
func (r *MessageRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	message.ID = uuid.New().String()
	message.Timestamp = r.clock.Now()

	query := `
		INSERT INTO chat_messages (id, session_id, message, is_user, sent_at, psychologist_type)
		VALUES (:id, :session_id, :message, :is_user, :sent_at, :psychologist_type)
	`

	_, err := r.db.NamedExecContext(ctx, query, message)
	return err
}

// ListBySession retrieves messages for a session in timestamp order
func (r *MessageRepository) ListBySession(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	messages := []models.ChatMessage{}
	query := r.db.Rebind(`
		SELECT id, session_id, message, is_user, sent_at, psychologist_type
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY sent_at ASC
	`)

	if err := r.db.SelectContext(ctx, &messages, query, sessionID); err != nil {
		return nil, err
	}

	return messages, nil
}
