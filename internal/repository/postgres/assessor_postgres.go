package postgres

import (
	"context"
	"database/sql"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// BriefAssessorPostgres is a PostgreSQL implementation of repository.BriefAssessorRepository.
type BriefAssessorPostgres struct {
	db *sql.DB
}

// NewBriefAssessorPostgres creates a new BriefAssessorPostgres repository.
func NewBriefAssessorPostgres(db *sql.DB) *BriefAssessorPostgres {
	return &BriefAssessorPostgres{db: db}
}

var _ repository.BriefAssessorRepository = (*BriefAssessorPostgres)(nil)

// ListForBrief returns assessors, resolving linked users to their current address.
func (r *BriefAssessorPostgres) ListForBrief(ctx context.Context, briefID int64) ([]model.BriefAssessor, error) {
	const q = `
		SELECT a.id, a.brief_id, a.user_id, COALESCE(u.email_address, a.email_address, ''), a.view_day_rates
		FROM brief_assessors a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.brief_id = $1
		ORDER BY a.id
	`
	rows, err := r.db.QueryContext(ctx, q, briefID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.BriefAssessor, 0)
	for rows.Next() {
		var (
			a      model.BriefAssessor
			userID sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.BriefID, &userID, &a.EmailAddress, &a.ViewDayRates); err != nil {
			return nil, err
		}
		a.UserID = int64Ptr(userID)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create stores an assessor. The address is only persisted when no user is linked.
func (r *BriefAssessorPostgres) Create(ctx context.Context, a *model.BriefAssessor) (*model.BriefAssessor, error) {
	const q = `
		INSERT INTO brief_assessors (brief_id, user_id, email_address, view_day_rates)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	email := a.EmailAddress
	if a.UserID != nil {
		email = ""
	}
	out := *a
	if err := r.db.QueryRowContext(ctx, q, a.BriefID, nullInt64(a.UserID), nullString(email), a.ViewDayRates).Scan(&out.ID); err != nil {
		return nil, err
	}
	return &out, nil
}
