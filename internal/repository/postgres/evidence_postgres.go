package postgres

import (
	"context"
	"database/sql"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// EvidencePostgres is a PostgreSQL implementation of repository.EvidenceRepository.
type EvidencePostgres struct {
	db *sql.DB
}

// NewEvidencePostgres creates a new EvidencePostgres repository.
func NewEvidencePostgres(db *sql.DB) *EvidencePostgres {
	return &EvidencePostgres{db: db}
}

var _ repository.EvidenceRepository = (*EvidencePostgres)(nil)

const evidenceColumns = `id, domain_id, supplier_code, brief_id, user_id, data, created_at, submitted_at, approved_at, rejected_at`

func scanEvidence(s rowScanner) (*model.Evidence, error) {
	var (
		e                             model.Evidence
		raw                           []byte
		briefID, userID               sql.NullInt64
		submitted, approved, rejected sql.NullTime
	)
	if err := s.Scan(&e.ID, &e.DomainID, &e.SupplierCode, &briefID, &userID, &raw,
		&e.CreatedAt, &submitted, &approved, &rejected); err != nil {
		return nil, err
	}
	data, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	e.Data = data
	e.BriefID = int64Ptr(briefID)
	e.UserID = int64Ptr(userID)
	e.SubmittedAt = timePtr(submitted)
	e.ApprovedAt = timePtr(approved)
	e.RejectedAt = timePtr(rejected)
	return &e, nil
}

// FindByID fetches a single evidence record.
func (r *EvidencePostgres) FindByID(ctx context.Context, id int64) (*model.Evidence, error) {
	const q = `SELECT ` + evidenceColumns + ` FROM evidence WHERE id = $1`
	return scanEvidence(r.db.QueryRowContext(ctx, q, id))
}

// FindLatest returns the supplier's most recent evidence for a domain.
func (r *EvidencePostgres) FindLatest(ctx context.Context, supplierCode, domainID int64) (*model.Evidence, error) {
	const q = `
		SELECT ` + evidenceColumns + `
		FROM evidence
		WHERE supplier_code = $1 AND domain_id = $2
		ORDER BY id DESC
		LIMIT 1
	`
	return scanEvidence(r.db.QueryRowContext(ctx, q, supplierCode, domainID))
}

// FindPreviousAssessed returns the latest other submission that was approved or rejected.
func (r *EvidencePostgres) FindPreviousAssessed(ctx context.Context, evidenceID, supplierCode, domainID int64) (*model.Evidence, error) {
	const q = `
		SELECT ` + evidenceColumns + `
		FROM evidence
		WHERE supplier_code = $2
		  AND domain_id = $3
		  AND submitted_at IS NOT NULL
		  AND (approved_at IS NOT NULL OR rejected_at IS NOT NULL)
		  AND id <> $1
		ORDER BY id DESC
		LIMIT 1
	`
	return scanEvidence(r.db.QueryRowContext(ctx, q, evidenceID, supplierCode, domainID))
}

const evidenceSummarySelect = `
	SELECT e.id, e.created_at, e.submitted_at, e.approved_at, e.rejected_at, e.data,
	       COALESCE(e.data->>'maxDailyRate', ''),
	       s.name, s.code,
	       b.id, b.closed_at, COALESCE(b.data->>'title', ''),
	       d.name, d.id, d.price_maximum::float8
	FROM evidence e
	JOIN domains d ON d.id = e.domain_id
	JOIN suppliers s ON s.code = e.supplier_code
	LEFT JOIN briefs b ON b.id = e.brief_id
`

// ListAll returns evidence of every supplier, or of one when supplierCode is set.
func (r *EvidencePostgres) ListAll(ctx context.Context, supplierCode *int64) ([]model.EvidenceSummary, error) {
	const q = evidenceSummarySelect + `
		WHERE ($1::bigint IS NULL OR e.supplier_code = $1)
		ORDER BY e.submitted_at DESC NULLS LAST, e.created_at DESC
	`
	return r.summaries(ctx, q, nullInt64(supplierCode))
}

// ListSubmitted returns evidence awaiting assessment, oldest submission first.
func (r *EvidencePostgres) ListSubmitted(ctx context.Context) ([]model.EvidenceSummary, error) {
	const q = evidenceSummarySelect + `
		WHERE e.submitted_at IS NOT NULL AND e.approved_at IS NULL AND e.rejected_at IS NULL
		ORDER BY e.submitted_at ASC
	`
	return r.summaries(ctx, q)
}

func (r *EvidencePostgres) summaries(ctx context.Context, q string, args ...any) ([]model.EvidenceSummary, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.EvidenceSummary, 0)
	for rows.Next() {
		var (
			e                                     model.EvidenceSummary
			raw                                   []byte
			submitted, approved, rejected, closed sql.NullTime
			briefID                               sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.CreatedAt, &submitted, &approved, &rejected, &raw, &e.MaxDailyRate,
			&e.SupplierName, &e.SupplierCode, &briefID, &closed, &e.BriefTitle,
			&e.DomainName, &e.DomainID, &e.DomainPriceMaximum); err != nil {
			return nil, err
		}
		data, err := decodeJSON(raw)
		if err != nil {
			return nil, err
		}
		e.Data = data
		e.SubmittedAt = timePtr(submitted)
		e.ApprovedAt = timePtr(approved)
		e.RejectedAt = timePtr(rejected)
		e.BriefClosedAt = timePtr(closed)
		e.BriefID = int64Ptr(briefID)
		e.Status = model.EvidenceStatus(e.SubmittedAt, e.ApprovedAt, e.RejectedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// FindAssessment returns the latest assessment of the evidence.
func (r *EvidencePostgres) FindAssessment(ctx context.Context, evidenceID int64) (*model.EvidenceAssessment, error) {
	const q = `
		SELECT id, evidence_id, user_id, status, data, created_at
		FROM evidence_assessments
		WHERE evidence_id = $1
		ORDER BY id DESC
		LIMIT 1
	`
	var (
		a      model.EvidenceAssessment
		userID sql.NullInt64
		raw    []byte
	)
	if err := r.db.QueryRowContext(ctx, q, evidenceID).Scan(&a.ID, &a.EvidenceID, &userID, &a.Status, &raw, &a.CreatedAt); err != nil {
		return nil, err
	}
	data, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	a.Data = data
	a.UserID = int64Ptr(userID)
	return &a, nil
}

// ExistsForBrief reports whether the supplier lodged evidence for the brief.
func (r *EvidencePostgres) ExistsForBrief(ctx context.Context, supplierCode, briefID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM evidence WHERE supplier_code = $1 AND brief_id = $2)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, supplierCode, briefID).Scan(&exists)
	return exists, err
}

// Delete removes an evidence record.
func (r *EvidencePostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM evidence WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
