package postgres

import (
	"context"
	"database/sql"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// AuditPostgres is a PostgreSQL implementation of repository.AuditRepository.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

// Create inserts an audit event and sets its id.
func (r *AuditPostgres) Create(ctx context.Context, e *model.AuditEvent) error {
	data, err := encodeJSON(e.Data)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO audit_events (type, "user", data, object_type, object_id, created_at)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, q, string(e.Type), e.User, data, e.ObjectType, e.ObjectID, e.CreatedAt).Scan(&e.ID)
}

// Exists reports whether an event of the type was recorded against the object.
func (r *AuditPostgres) Exists(ctx context.Context, auditType model.AuditType, objectType string, objectID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM audit_events WHERE type = $1 AND object_type = $2 AND object_id = $3
		)
	`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, string(auditType), objectType, objectID).Scan(&exists)
	return exists, err
}
