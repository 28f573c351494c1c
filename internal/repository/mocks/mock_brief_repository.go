package mocks

import (
	"context"
	"time"

	"marketapi/internal/model"
	"marketapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockBriefRepository struct {
	mock.Mock
}

func (m *MockBriefRepository) Create(ctx context.Context, b *model.Brief) (*model.Brief, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Brief), args.Error(1)
}

func (m *MockBriefRepository) Update(ctx context.Context, b *model.Brief) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBriefRepository) FindByID(ctx context.Context, id int64) (*model.Brief, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Brief), args.Error(1)
}

func (m *MockBriefRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Brief], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Brief]), args.Error(1)
}

func (m *MockBriefRepository) ListForUser(ctx context.Context, userID int64) ([]model.Brief, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Brief), args.Error(1)
}

func (m *MockBriefRepository) ListClosedPendingNotice(ctx context.Context, now time.Time) ([]model.Brief, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Brief), args.Error(1)
}

func (m *MockBriefRepository) FrameworkStatus(ctx context.Context, frameworkSlug string, lotSlug string) (string, error) {
	args := m.Called(ctx, frameworkSlug, lotSlug)
	return args.String(0), args.Error(1)
}

func (m *MockBriefRepository) FindFramework(ctx context.Context, slug string) (*model.Framework, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Framework), args.Error(1)
}

func (m *MockBriefRepository) HasDomainAssessmentForBrief(ctx context.Context, briefID int64, supplierID int64) (bool, error) {
	args := m.Called(ctx, briefID, supplierID)
	return args.Bool(0), args.Error(1)
}

type MockBriefResponseRepository struct {
	mock.Mock
}

func (m *MockBriefResponseRepository) Create(ctx context.Context, r *model.BriefResponse) (*model.BriefResponse, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BriefResponse), args.Error(1)
}

func (m *MockBriefResponseRepository) FindByID(ctx context.Context, id int64) (*model.BriefResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BriefResponse), args.Error(1)
}

func (m *MockBriefResponseRepository) Withdraw(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockBriefResponseRepository) ListForBrief(ctx context.Context, briefID int64) ([]model.BriefResponse, error) {
	args := m.Called(ctx, briefID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BriefResponse), args.Error(1)
}

func (m *MockBriefResponseRepository) ListForSupplierAndBrief(ctx context.Context, briefID int64, supplierCode int64) ([]model.BriefResponse, error) {
	args := m.Called(ctx, briefID, supplierCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BriefResponse), args.Error(1)
}

func (m *MockBriefResponseRepository) ListForSupplier(ctx context.Context, supplierCode int64) ([]model.SupplierResponse, error) {
	args := m.Called(ctx, supplierCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SupplierResponse), args.Error(1)
}

func (m *MockBriefResponseRepository) CountForBrief(ctx context.Context, briefID int64) (int, error) {
	args := m.Called(ctx, briefID)
	return args.Int(0), args.Error(1)
}

func (m *MockBriefResponseRepository) FindContact(ctx context.Context, briefID int64, supplierCode int64) (*model.BriefResponseContact, error) {
	args := m.Called(ctx, briefID, supplierCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BriefResponseContact), args.Error(1)
}

func (m *MockBriefResponseRepository) SaveContact(ctx context.Context, c *model.BriefResponseContact) (*model.BriefResponseContact, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BriefResponseContact), args.Error(1)
}

type MockBriefAssessorRepository struct {
	mock.Mock
}

func (m *MockBriefAssessorRepository) ListForBrief(ctx context.Context, briefID int64) ([]model.BriefAssessor, error) {
	args := m.Called(ctx, briefID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BriefAssessor), args.Error(1)
}

func (m *MockBriefAssessorRepository) Create(ctx context.Context, a *model.BriefAssessor) (*model.BriefAssessor, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BriefAssessor), args.Error(1)
}

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) ListQuestions(ctx context.Context, briefID int64) ([]model.BriefQuestion, error) {
	args := m.Called(ctx, briefID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BriefQuestion), args.Error(1)
}

func (m *MockQuestionRepository) ListAnswers(ctx context.Context, briefID int64) ([]model.BriefClarificationQuestion, error) {
	args := m.Called(ctx, briefID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BriefClarificationQuestion), args.Error(1)
}

func (m *MockQuestionRepository) CreateAnswer(ctx context.Context, q *model.BriefClarificationQuestion) (*model.BriefClarificationQuestion, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BriefClarificationQuestion), args.Error(1)
}

func (m *MockQuestionRepository) FindQuestion(ctx context.Context, id int64) (*model.BriefQuestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BriefQuestion), args.Error(1)
}
