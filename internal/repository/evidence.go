package repository

import (
	"context"

	"marketapi/internal/model"
)

// EvidenceRepository reads and removes supplier evidence.
type EvidenceRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Evidence, error)
	FindLatest(ctx context.Context, supplierCode, domainID int64) (*model.Evidence, error)
	// FindPreviousAssessed returns the latest other submission of the same supplier and domain
	// that was approved or rejected.
	FindPreviousAssessed(ctx context.Context, evidenceID, supplierCode, domainID int64) (*model.Evidence, error)
	ListAll(ctx context.Context, supplierCode *int64) ([]model.EvidenceSummary, error)
	ListSubmitted(ctx context.Context) ([]model.EvidenceSummary, error)
	FindAssessment(ctx context.Context, evidenceID int64) (*model.EvidenceAssessment, error)
	ExistsForBrief(ctx context.Context, supplierCode, briefID int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// CaseStudyRepository persists case study assessments.
type CaseStudyRepository interface {
	ListUnassessed(ctx context.Context) ([]model.CaseStudy, error)
	FindByID(ctx context.Context, id int64) (*model.CaseStudy, error)
	ListAssessments(ctx context.Context, caseStudyID int64, userID *int64) ([]model.CaseStudyAssessment, error)
	FindAssessment(ctx context.Context, id int64) (*model.CaseStudyAssessment, error)
	CreateAssessment(ctx context.Context, a *model.CaseStudyAssessment) (*model.CaseStudyAssessment, error)
	// UpdateAssessment stores status and comment and applies the criteria diff.
	UpdateAssessment(ctx context.Context, a *model.CaseStudyAssessment, add, remove []int64) error
	DeleteAssessment(ctx context.Context, id int64) error
}

// AuditRepository stores audit events.
type AuditRepository interface {
	Create(ctx context.Context, e *model.AuditEvent) error
	Exists(ctx context.Context, auditType model.AuditType, objectType string, objectID int64) (bool, error)
}
