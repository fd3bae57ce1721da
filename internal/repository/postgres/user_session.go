package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mindspace/mindspace-backend/internal/models"
	"github.com/mindspace/mindspace-backend/internal/repository"
)

// UserSessionRepository stores login sessions backing issued tokens
type UserSessionRepository struct {
	db *sqlx.DB
}

// NewUserSessionRepository creates a new user session repository
func NewUserSessionRepository(db *sqlx.DB) *UserSessionRepository {
	return &UserSessionRepository{db: db}
}

// Create creates a new user session
func (r *UserSessionRepository) Create(ctx context.Context, session *models.UserSession) error {
	query := r.db.Rebind(`
		INSERT INTO user_sessions (
			id, user_id, token_hash, refresh_token_hash, expires_at, refresh_expires_at,
			ip_address, user_agent, created_at, last_activity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.TokenHash, session.RefreshTokenHash,
		session.ExpiresAt, session.RefreshExpiresAt, session.IPAddress,
		session.UserAgent, session.CreatedAt, session.LastActivity,
	)
	return err
}

// GetByID retrieves a session by ID
func (r *UserSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserSession, error) {
	var session models.UserSession
	query := r.db.Rebind(`
		SELECT id, user_id, token_hash, refresh_token_hash, expires_at, refresh_expires_at,
			ip_address, user_agent, created_at, last_activity, revoked_at
		FROM user_sessions WHERE id = ?`)

	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Update updates a session
func (r *UserSessionRepository) Update(ctx context.Context, session *models.UserSession) error {
	query := r.db.Rebind(`
		UPDATE user_sessions SET
			token_hash = ?, refresh_token_hash = ?, expires_at = ?,
			refresh_expires_at = ?, last_activity = ?, revoked_at = ?
		WHERE id = ?`)

	_, err := r.db.ExecContext(ctx, query,
		session.TokenHash, session.RefreshTokenHash, session.ExpiresAt,
		session.RefreshExpiresAt, session.LastActivity, session.RevokedAt, session.ID,
	)
	return err
}

// DeleteExpired deletes expired or revoked sessions
func (r *UserSessionRepository) DeleteExpired(ctx context.Context) error {
	query := r.db.Rebind(`
		DELETE FROM user_sessions
		WHERE refresh_expires_at < ? OR revoked_at IS NOT NULL`)
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC())
	return err
}

// DeleteUserSessions deletes all sessions for a user
func (r *UserSessionRepository) DeleteUserSessions(ctx context.Context, userID uuid.UUID) error {
	query := r.db.Rebind(`DELETE FROM user_sessions WHERE user_id = ?`)
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}
