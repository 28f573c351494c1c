package postgres

import (
	"context"
	"database/sql"

	"marketapi/internal/database"
	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// CaseStudyPostgres is a PostgreSQL implementation of repository.CaseStudyRepository.
type CaseStudyPostgres struct {
	db *sql.DB
}

// NewCaseStudyPostgres creates a new CaseStudyPostgres repository.
func NewCaseStudyPostgres(db *sql.DB) *CaseStudyPostgres {
	return &CaseStudyPostgres{db: db}
}

var _ repository.CaseStudyRepository = (*CaseStudyPostgres)(nil)

const caseStudySelect = `
	SELECT cs.id, cs.supplier_code, s.name, COALESCE(cs.data->>'service', ''), cs.data, cs.status,
	       cs.created_at, COUNT(csa.id)
	FROM case_studies cs
	JOIN suppliers s ON s.code = cs.supplier_code
	LEFT JOIN case_study_assessments csa ON csa.case_study_id = cs.id
`

func scanCaseStudy(s rowScanner) (*model.CaseStudy, error) {
	var (
		cs  model.CaseStudy
		raw []byte
	)
	if err := s.Scan(&cs.ID, &cs.SupplierCode, &cs.SupplierName, &cs.DomainName, &raw, &cs.Status,
		&cs.CreatedAt, &cs.AssessmentCount); err != nil {
		return nil, err
	}
	data, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	cs.Data = data
	return &cs, nil
}

// ListUnassessed returns case studies still waiting for an outcome with their review counts.
func (r *CaseStudyPostgres) ListUnassessed(ctx context.Context) ([]model.CaseStudy, error) {
	const q = caseStudySelect + `
		WHERE cs.status = 'unassessed'
		GROUP BY cs.id, s.name
		ORDER BY cs.created_at, cs.id
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.CaseStudy, 0)
	for rows.Next() {
		cs, err := scanCaseStudy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cs)
	}
	return out, rows.Err()
}

// FindByID fetches a case study with its review count.
func (r *CaseStudyPostgres) FindByID(ctx context.Context, id int64) (*model.CaseStudy, error) {
	const q = caseStudySelect + ` WHERE cs.id = $1 GROUP BY cs.id, s.name`
	return scanCaseStudy(r.db.QueryRowContext(ctx, q, id))
}

const assessmentSelect = `
	SELECT a.id, a.case_study_id, a.user_id, u.name, a.status, a.comment, a.created_at
	FROM case_study_assessments a
	JOIN users u ON u.id = a.user_id
`

func scanAssessment(s rowScanner) (*model.CaseStudyAssessment, error) {
	var a model.CaseStudyAssessment
	if err := s.Scan(&a.ID, &a.CaseStudyID, &a.UserID, &a.Username, &a.Status, &a.Comment, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.ApprovedCriteria = []int64{}
	return &a, nil
}

// ListAssessments returns the assessments of a case study, optionally limited to one assessor.
func (r *CaseStudyPostgres) ListAssessments(ctx context.Context, caseStudyID int64, userID *int64) ([]model.CaseStudyAssessment, error) {
	const q = assessmentSelect + `
		WHERE a.case_study_id = $1 AND ($2::bigint IS NULL OR a.user_id = $2)
		ORDER BY a.id
	`
	rows, err := r.db.QueryContext(ctx, q, caseStudyID, nullInt64(userID))
	if err != nil {
		return nil, err
	}
	out := make([]model.CaseStudyAssessment, 0)
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	criteria, err := r.criteria(ctx, `
		SELECT c.case_study_assessment_id, c.domain_criteria_id
		FROM case_study_assessment_domain_criteria c
		JOIN case_study_assessments a ON a.id = c.case_study_assessment_id
		WHERE a.case_study_id = $1
		ORDER BY c.case_study_assessment_id, c.domain_criteria_id
	`, caseStudyID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if ids, ok := criteria[out[i].ID]; ok {
			out[i].ApprovedCriteria = ids
		}
	}
	return out, nil
}

func (r *CaseStudyPostgres) criteria(ctx context.Context, q string, arg any) (map[int64][]int64, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]int64)
	for rows.Next() {
		var assessmentID, criteriaID int64
		if err := rows.Scan(&assessmentID, &criteriaID); err != nil {
			return nil, err
		}
		out[assessmentID] = append(out[assessmentID], criteriaID)
	}
	return out, rows.Err()
}

// FindAssessment fetches one assessment with its approved criteria.
func (r *CaseStudyPostgres) FindAssessment(ctx context.Context, id int64) (*model.CaseStudyAssessment, error) {
	a, err := scanAssessment(r.db.QueryRowContext(ctx, assessmentSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, err
	}
	criteria, err := r.criteria(ctx, `
		SELECT case_study_assessment_id, domain_criteria_id
		FROM case_study_assessment_domain_criteria
		WHERE case_study_assessment_id = $1
		ORDER BY domain_criteria_id
	`, id)
	if err != nil {
		return nil, err
	}
	if ids, ok := criteria[id]; ok {
		a.ApprovedCriteria = ids
	}
	return a, nil
}

const qAddCriteria = `
	INSERT INTO case_study_assessment_domain_criteria (case_study_assessment_id, domain_criteria_id)
	VALUES ($1, $2)
	ON CONFLICT DO NOTHING
`

// CreateAssessment stores an assessment and its approved criteria.
func (r *CaseStudyPostgres) CreateAssessment(ctx context.Context, a *model.CaseStudyAssessment) (*model.CaseStudyAssessment, error) {
	var id int64
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		const q = `
			INSERT INTO case_study_assessments (case_study_id, user_id, status, comment, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		if err := tx.QueryRowContext(ctx, q, a.CaseStudyID, a.UserID, a.Status, a.Comment, a.CreatedAt).Scan(&id); err != nil {
			return err
		}
		for _, cid := range a.ApprovedCriteria {
			if _, err := tx.ExecContext(ctx, qAddCriteria, id, cid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindAssessment(ctx, id)
}

// UpdateAssessment stores status and comment and applies the criteria diff.
func (r *CaseStudyPostgres) UpdateAssessment(ctx context.Context, a *model.CaseStudyAssessment, add, remove []int64) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		const qUpdate = `UPDATE case_study_assessments SET status = $2, comment = $3 WHERE id = $1`
		res, err := tx.ExecContext(ctx, qUpdate, a.ID, a.Status, a.Comment)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return sql.ErrNoRows
		}

		const qRemove = `
			DELETE FROM case_study_assessment_domain_criteria
			WHERE case_study_assessment_id = $1 AND domain_criteria_id = $2
		`
		for _, cid := range remove {
			if _, err := tx.ExecContext(ctx, qRemove, a.ID, cid); err != nil {
				return err
			}
		}
		for _, cid := range add {
			if _, err := tx.ExecContext(ctx, qAddCriteria, a.ID, cid); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteAssessment removes an assessment; its criteria rows cascade.
func (r *CaseStudyPostgres) DeleteAssessment(ctx context.Context, id int64) error {
	const q = `DELETE FROM case_study_assessments WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
