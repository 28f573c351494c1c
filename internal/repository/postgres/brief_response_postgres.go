package postgres

import (
	"context"
	"database/sql"
	"time"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// BriefResponsePostgres is a PostgreSQL implementation of repository.BriefResponseRepository.
type BriefResponsePostgres struct {
	db *sql.DB
}

// NewBriefResponsePostgres creates a new BriefResponsePostgres repository.
func NewBriefResponsePostgres(db *sql.DB) *BriefResponsePostgres {
	return &BriefResponsePostgres{db: db}
}

var _ repository.BriefResponseRepository = (*BriefResponsePostgres)(nil)

const responseSelect = `
	SELECT br.id, br.brief_id, br.supplier_code, s.name, br.data, br.created_at, br.withdrawn_at
	FROM brief_responses br
	JOIN suppliers s ON s.code = br.supplier_code
`

func scanResponse(s rowScanner) (*model.BriefResponse, error) {
	var (
		r         model.BriefResponse
		raw       []byte
		withdrawn sql.NullTime
	)
	if err := s.Scan(&r.ID, &r.BriefID, &r.SupplierCode, &r.SupplierName, &raw, &r.CreatedAt, &withdrawn); err != nil {
		return nil, err
	}
	data, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	r.Data = data
	r.WithdrawnAt = timePtr(withdrawn)
	return &r, nil
}

// Create inserts a response and returns it with its generated id.
func (p *BriefResponsePostgres) Create(ctx context.Context, r *model.BriefResponse) (*model.BriefResponse, error) {
	data, err := encodeJSON(r.Data)
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO brief_responses (brief_id, supplier_code, data, created_at)
		VALUES ($1, $2, $3::jsonb, $4)
		RETURNING id
	`
	var id int64
	if err := p.db.QueryRowContext(ctx, q, r.BriefID, r.SupplierCode, data, r.CreatedAt).Scan(&id); err != nil {
		return nil, err
	}
	return p.FindByID(ctx, id)
}

// FindByID fetches a single response, withdrawn or not.
func (p *BriefResponsePostgres) FindByID(ctx context.Context, id int64) (*model.BriefResponse, error) {
	return scanResponse(p.db.QueryRowContext(ctx, responseSelect+` WHERE br.id = $1`, id))
}

// Withdraw stamps withdrawn_at on a response that is not withdrawn yet.
func (p *BriefResponsePostgres) Withdraw(ctx context.Context, id int64, at time.Time) error {
	const q = `UPDATE brief_responses SET withdrawn_at = $2 WHERE id = $1 AND withdrawn_at IS NULL`
	res, err := p.db.ExecContext(ctx, q, id, at)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListForBrief returns active responses to a brief.
func (p *BriefResponsePostgres) ListForBrief(ctx context.Context, briefID int64) ([]model.BriefResponse, error) {
	return p.list(ctx, responseSelect+` WHERE br.brief_id = $1 AND br.withdrawn_at IS NULL ORDER BY br.id`, briefID)
}

// ListForSupplierAndBrief returns the supplier's active responses to a brief.
func (p *BriefResponsePostgres) ListForSupplierAndBrief(ctx context.Context, briefID, supplierCode int64) ([]model.BriefResponse, error) {
	const q = responseSelect + `
		WHERE br.brief_id = $1 AND br.supplier_code = $2 AND br.withdrawn_at IS NULL
		ORDER BY br.id
	`
	return p.list(ctx, q, briefID, supplierCode)
}

func (p *BriefResponsePostgres) list(ctx context.Context, q string, args ...any) ([]model.BriefResponse, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.BriefResponse, 0)
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// ListForSupplier returns every response of the supplier with its brief's headline fields.
func (p *BriefResponsePostgres) ListForSupplier(ctx context.Context, supplierCode int64) ([]model.SupplierResponse, error) {
	const q = `
		SELECT br.id, b.id, COALESCE(b.data->>'title', ''), l.slug, b.closed_at, br.created_at, br.withdrawn_at
		FROM brief_responses br
		JOIN briefs b ON b.id = br.brief_id
		JOIN lots l ON l.id = b.lot_id
		WHERE br.supplier_code = $1
		ORDER BY br.id DESC
	`
	rows, err := p.db.QueryContext(ctx, q, supplierCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.SupplierResponse, 0)
	for rows.Next() {
		var (
			sr                model.SupplierResponse
			closed, withdrawn sql.NullTime
		)
		if err := rows.Scan(&sr.ID, &sr.BriefID, &sr.BriefName, &sr.LotSlug, &closed, &sr.CreatedAt, &withdrawn); err != nil {
			return nil, err
		}
		sr.ClosedAt = timePtr(closed)
		sr.WithdrawnAt = timePtr(withdrawn)
		out = append(out, sr)
	}
	return out, rows.Err()
}

// CountForBrief counts active responses to a brief.
func (p *BriefResponsePostgres) CountForBrief(ctx context.Context, briefID int64) (int, error) {
	const q = `SELECT COUNT(*) FROM brief_responses WHERE brief_id = $1 AND withdrawn_at IS NULL`
	var n int
	err := p.db.QueryRowContext(ctx, q, briefID).Scan(&n)
	return n, err
}

// FindContact returns the supplier's contact for a brief.
func (p *BriefResponsePostgres) FindContact(ctx context.Context, briefID, supplierCode int64) (*model.BriefResponseContact, error) {
	const q = `
		SELECT id, brief_id, supplier_code, email_address
		FROM brief_response_contacts
		WHERE brief_id = $1 AND supplier_code = $2
	`
	var c model.BriefResponseContact
	if err := p.db.QueryRowContext(ctx, q, briefID, supplierCode).Scan(&c.ID, &c.BriefID, &c.SupplierCode, &c.EmailAddress); err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveContact inserts or replaces the supplier's contact for a brief.
func (p *BriefResponsePostgres) SaveContact(ctx context.Context, c *model.BriefResponseContact) (*model.BriefResponseContact, error) {
	const q = `
		INSERT INTO brief_response_contacts (brief_id, supplier_code, email_address)
		VALUES ($1, $2, $3)
		ON CONFLICT (brief_id, supplier_code) DO UPDATE SET email_address = EXCLUDED.email_address
		RETURNING id
	`
	out := *c
	if err := p.db.QueryRowContext(ctx, q, c.BriefID, c.SupplierCode, c.EmailAddress).Scan(&out.ID); err != nil {
		return nil, err
	}
	return &out, nil
}
