package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"marketapi/internal/database"
	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// BriefPostgres is a PostgreSQL implementation of repository.BriefRepository.
type BriefPostgres struct {
	db *sql.DB
}

// NewBriefPostgres creates a new BriefPostgres repository.
func NewBriefPostgres(db *sql.DB) *BriefPostgres {
	return &BriefPostgres{db: db}
}

var _ repository.BriefRepository = (*BriefPostgres)(nil)

const briefSelect = `
	SELECT b.id, f.slug, f.status, l.slug, b.data, b.created_at, b.updated_at,
	       b.published_at, b.closed_at, b.withdrawn_at
	FROM briefs b
	JOIN lots l ON l.id = b.lot_id
	JOIN frameworks f ON f.id = l.framework_id
`

func scanBrief(s rowScanner) (*model.Brief, error) {
	var (
		b                              model.Brief
		raw                            []byte
		published, closed, withdrawnAt sql.NullTime
	)
	if err := s.Scan(&b.ID, &b.FrameworkSlug, &b.FrameworkStatus, &b.LotSlug, &raw,
		&b.CreatedAt, &b.UpdatedAt, &published, &closed, &withdrawnAt); err != nil {
		return nil, err
	}
	data, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	b.Data = data
	b.PublishedAt = timePtr(published)
	b.ClosedAt = timePtr(closed)
	b.WithdrawnAt = timePtr(withdrawnAt)
	b.UserIDs = []int64{}
	return &b, nil
}

// Create inserts a draft brief for a framework lot and links its buyers.
func (r *BriefPostgres) Create(ctx context.Context, b *model.Brief) (*model.Brief, error) {
	data, err := encodeJSON(b.Data)
	if err != nil {
		return nil, err
	}

	var id int64
	err = database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		const qInsert = `
			INSERT INTO briefs (lot_id, data, created_at, updated_at)
			SELECT l.id, $3::jsonb, $4, $4
			FROM lots l
			JOIN frameworks f ON f.id = l.framework_id
			WHERE f.slug = $1 AND l.slug = $2
			RETURNING id
		`
		if err := tx.QueryRowContext(ctx, qInsert, b.FrameworkSlug, b.LotSlug, data, b.CreatedAt).Scan(&id); err != nil {
			return err
		}

		const qUser = `INSERT INTO brief_users (brief_id, user_id) VALUES ($1, $2)`
		for _, uid := range b.UserIDs {
			if _, err := tx.ExecContext(ctx, qUser, id, uid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Update stores the mutable columns of a brief.
func (r *BriefPostgres) Update(ctx context.Context, b *model.Brief) error {
	data, err := encodeJSON(b.Data)
	if err != nil {
		return err
	}
	const q = `
		UPDATE briefs
		SET data = $2::jsonb, published_at = $3, closed_at = $4, withdrawn_at = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, b.ID, data,
		nullTime(b.PublishedAt), nullTime(b.ClosedAt), nullTime(b.WithdrawnAt), b.UpdatedAt)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID returns the brief with its buyer user ids.
func (r *BriefPostgres) FindByID(ctx context.Context, id int64) (*model.Brief, error) {
	b, err := scanBrief(r.db.QueryRowContext(ctx, briefSelect+` WHERE b.id = $1`, id))
	if err != nil {
		return nil, err
	}

	const qUsers = `SELECT user_id FROM brief_users WHERE brief_id = $1 ORDER BY user_id`
	rows, err := r.db.QueryContext(ctx, qUsers, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var uid int64
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		b.UserIDs = append(b.UserIDs, uid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

// List pages through all briefs, newest first. Buyer ids are not loaded.
func (r *BriefPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Brief], error) {
	const qCount = `SELECT COUNT(*) FROM briefs`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	items, err := r.query(ctx, briefSelect+` ORDER BY b.id DESC LIMIT $1 OFFSET $2`, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Brief]{Items: items, Total: total}, nil
}

// ListForUser returns the briefs the user is a buyer on.
func (r *BriefPostgres) ListForUser(ctx context.Context, userID int64) ([]model.Brief, error) {
	const q = briefSelect + `
		JOIN brief_users bu ON bu.brief_id = b.id
		WHERE bu.user_id = $1
		ORDER BY b.id DESC
	`
	return r.query(ctx, q, userID)
}

// ListClosedPendingNotice returns briefs past closed_at with no sent_closed_brief_email audit event.
func (r *BriefPostgres) ListClosedPendingNotice(ctx context.Context, now time.Time) ([]model.Brief, error) {
	const q = briefSelect + `
		WHERE b.published_at IS NOT NULL
		  AND b.withdrawn_at IS NULL
		  AND b.closed_at <= $1
		  AND NOT EXISTS (
		      SELECT 1 FROM audit_events a
		      WHERE a.type = $2 AND a.object_type = 'Brief' AND a.object_id = b.id
		  )
		ORDER BY b.closed_at
	`
	briefs, err := r.query(ctx, q, now, string(model.AuditSentClosedBriefEmail))
	if err != nil {
		return nil, err
	}
	for i := range briefs {
		full, err := r.FindByID(ctx, briefs[i].ID)
		if err != nil {
			return nil, err
		}
		briefs[i] = *full
	}
	return briefs, nil
}

func (r *BriefPostgres) query(ctx context.Context, q string, args ...any) ([]model.Brief, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Brief, 0)
	for rows.Next() {
		b, err := scanBrief(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// FrameworkStatus returns the status of the framework that offers the lot.
func (r *BriefPostgres) FrameworkStatus(ctx context.Context, frameworkSlug, lotSlug string) (string, error) {
	const q = `
		SELECT f.status
		FROM frameworks f
		JOIN lots l ON l.framework_id = f.id
		WHERE f.slug = $1 AND l.slug = $2
	`
	var status string
	err := r.db.QueryRowContext(ctx, q, frameworkSlug, lotSlug).Scan(&status)
	return status, err
}

// FindFramework loads a framework by slug with its lots ordered by slug.
func (r *BriefPostgres) FindFramework(ctx context.Context, slug string) (*model.Framework, error) {
	const q = `
		SELECT f.id, f.slug, f.name, f.status,
		       COALESCE(array_to_json(array_agg(l.slug ORDER BY l.slug) FILTER (WHERE l.slug IS NOT NULL)), '[]')
		FROM frameworks f
		LEFT JOIN lots l ON l.framework_id = f.id
		WHERE f.slug = $1
		GROUP BY f.id
	`
	var (
		f    model.Framework
		lots []byte
	)
	if err := r.db.QueryRowContext(ctx, q, slug).Scan(&f.ID, &f.Slug, &f.Name, &f.Status, &lots); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(lots, &f.Lots); err != nil {
		return nil, fmt.Errorf("decode framework lots: %w", err)
	}
	return &f, nil
}

// HasDomainAssessmentForBrief reports whether the brief raised an assessment of one of the supplier's domains.
func (r *BriefPostgres) HasDomainAssessmentForBrief(ctx context.Context, briefID, supplierID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM brief_assessments ba
			JOIN supplier_domains sd ON sd.id = ba.supplier_domain_id
			WHERE ba.brief_id = $1 AND sd.supplier_id = $2
		)
	`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, briefID, supplierID).Scan(&exists)
	return exists, err
}
