package mocks

import (
	"context"

	"marketapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockEvidenceRepository struct {
	mock.Mock
}

func (m *MockEvidenceRepository) FindByID(ctx context.Context, id int64) (*model.Evidence, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Evidence), args.Error(1)
}

func (m *MockEvidenceRepository) FindLatest(ctx context.Context, supplierCode int64, domainID int64) (*model.Evidence, error) {
	args := m.Called(ctx, supplierCode, domainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Evidence), args.Error(1)
}

func (m *MockEvidenceRepository) FindPreviousAssessed(ctx context.Context, evidenceID int64, supplierCode int64, domainID int64) (*model.Evidence, error) {
	args := m.Called(ctx, evidenceID, supplierCode, domainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Evidence), args.Error(1)
}

func (m *MockEvidenceRepository) ListAll(ctx context.Context, supplierCode *int64) ([]model.EvidenceSummary, error) {
	args := m.Called(ctx, supplierCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EvidenceSummary), args.Error(1)
}

func (m *MockEvidenceRepository) ListSubmitted(ctx context.Context) ([]model.EvidenceSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EvidenceSummary), args.Error(1)
}

func (m *MockEvidenceRepository) FindAssessment(ctx context.Context, evidenceID int64) (*model.EvidenceAssessment, error) {
	args := m.Called(ctx, evidenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvidenceAssessment), args.Error(1)
}

func (m *MockEvidenceRepository) ExistsForBrief(ctx context.Context, supplierCode int64, briefID int64) (bool, error) {
	args := m.Called(ctx, supplierCode, briefID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEvidenceRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCaseStudyRepository struct {
	mock.Mock
}

func (m *MockCaseStudyRepository) ListUnassessed(ctx context.Context) ([]model.CaseStudy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CaseStudy), args.Error(1)
}

func (m *MockCaseStudyRepository) FindByID(ctx context.Context, id int64) (*model.CaseStudy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CaseStudy), args.Error(1)
}

func (m *MockCaseStudyRepository) ListAssessments(ctx context.Context, caseStudyID int64, userID *int64) ([]model.CaseStudyAssessment, error) {
	args := m.Called(ctx, caseStudyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CaseStudyAssessment), args.Error(1)
}

func (m *MockCaseStudyRepository) FindAssessment(ctx context.Context, id int64) (*model.CaseStudyAssessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CaseStudyAssessment), args.Error(1)
}

func (m *MockCaseStudyRepository) CreateAssessment(ctx context.Context, a *model.CaseStudyAssessment) (*model.CaseStudyAssessment, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CaseStudyAssessment), args.Error(1)
}

func (m *MockCaseStudyRepository) UpdateAssessment(ctx context.Context, a *model.CaseStudyAssessment, add []int64, remove []int64) error {
	args := m.Called(ctx, a, add, remove)
	return args.Error(0)
}

func (m *MockCaseStudyRepository) DeleteAssessment(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, e *model.AuditEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockAuditRepository) Exists(ctx context.Context, auditType model.AuditType, objectType string, objectID int64) (bool, error) {
	args := m.Called(ctx, auditType, objectType, objectID)
	return args.Bool(0), args.Error(1)
}
