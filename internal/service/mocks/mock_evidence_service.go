package mocks

import (
	"context"

	"marketapi/internal/model"
	"marketapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockEvidenceService struct {
	mock.Mock
}

func (m *MockEvidenceService) List(ctx context.Context, supplierCode *int64) ([]model.EvidenceSummary, error) {
	args := m.Called(ctx, supplierCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EvidenceSummary), args.Error(1)
}

func (m *MockEvidenceService) Submitted(ctx context.Context) ([]model.EvidenceSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EvidenceSummary), args.Error(1)
}

func (m *MockEvidenceService) Get(ctx context.Context, id int64) (*model.EvidenceDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvidenceDetail), args.Error(1)
}

func (m *MockEvidenceService) DeleteDraft(ctx context.Context, id int64, user *model.User) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

type MockCaseStudyService struct {
	mock.Mock
}

func (m *MockCaseStudyService) Unassessed(ctx context.Context) ([]model.CaseStudy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CaseStudy), args.Error(1)
}

func (m *MockCaseStudyService) Assessments(ctx context.Context, caseStudyID int64, user *model.User, own bool) ([]model.CaseStudyAssessment, error) {
	args := m.Called(ctx, caseStudyID, user, own)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CaseStudyAssessment), args.Error(1)
}

func (m *MockCaseStudyService) CreateAssessment(ctx context.Context, caseStudyID int64, user *model.User, req service.CaseStudyAssessmentRequest) (*model.CaseStudyAssessment, error) {
	args := m.Called(ctx, caseStudyID, user, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CaseStudyAssessment), args.Error(1)
}

func (m *MockCaseStudyService) UpdateAssessment(ctx context.Context, id int64, user *model.User, req service.CaseStudyAssessmentRequest) (*model.CaseStudyAssessment, error) {
	args := m.Called(ctx, id, user, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CaseStudyAssessment), args.Error(1)
}

func (m *MockCaseStudyService) DeleteAssessment(ctx context.Context, id int64, user *model.User) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}
