package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mindspace/mindspace-backend/internal/models"
	"github.com/mindspace/mindspace-backend/internal/repository"
)

// SessionRepository implements repository.SessionRepository using sqlx
type SessionRepository struct {
	db    *sqlx.DB
	clock *repository.Clock
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sqlx.DB, clock *repository.Clock) *SessionRepository {
	return &SessionRepository{db: db, clock: clock}
}

// Create assigns id and created_at, then inserts the session
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.CreatedAt = r.clock.Now()

	query := `
		INSERT INTO therapy_sessions (id, user_id, psychologist_type, language, created_at, is_active)
		VALUES (:id, :user_id, :psychologist_type, :language, :created_at, :is_active)
	`

	_, err := r.db.NamedExecContext(ctx, query, session)
	return err
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	query := r.db.Rebind(`
		SELECT id, user_id, psychologist_type, language, created_at, is_active
		FROM therapy_sessions
		WHERE id = ?
	`)

	err := r.db.GetContext(ctx, &session, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &session, nil
}

// ListByUser retrieves the sessions a user created, newest first
func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	sessions := []*models.Session{}
	query := r.db.Rebind(`
		SELECT id, user_id, psychologist_type, language, created_at, is_active
		FROM therapy_sessions
		WHERE user_id = ?
		ORDER BY created_at DESC
	`)

	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SetActive flips the lifecycle flag of a session
func (r *SessionRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := r.db.Rebind(`UPDATE therapy_sessions SET is_active = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
