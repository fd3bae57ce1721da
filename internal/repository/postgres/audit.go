package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/mindspace/mindspace-backend/internal/models"
)

// AuditLogRepository handles audit log data access
type AuditLogRepository struct {
	db *sqlx.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *sqlx.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Log creates a new audit log entry
func (r *AuditLogRepository) Log(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			id, user_id, action, resource_type, resource_id,
			ip_address, user_agent, status, error_message, created_at
		) VALUES (
			:id, :user_id, :action, :resource_type, :resource_id,
			:ip_address, :user_agent, :status, :error_message, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, entry)
	return err
}

// GetByUserID lists audit logs for a specific user, newest first
func (r *AuditLogRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]*models.AuditLog, error) {
	entries := []*models.AuditLog{}
	query := r.db.Rebind(`
		SELECT id, user_id, action, resource_type, resource_id,
			ip_address, user_agent, status, error_message, created_at
		FROM audit_logs
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`)

	if err := r.db.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, err
	}
	return entries, nil
}
