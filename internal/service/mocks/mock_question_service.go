package mocks

import (
	"context"

	"marketapi/internal/model"
	"marketapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockQuestionService struct {
	mock.Mock
}

func (m *MockQuestionService) Questions(ctx context.Context, briefID int64) (*service.Questions, error) {
	args := m.Called(ctx, briefID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Questions), args.Error(1)
}

func (m *MockQuestionService) Answers(ctx context.Context, briefID int64) (*service.Answers, error) {
	args := m.Called(ctx, briefID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Answers), args.Error(1)
}

func (m *MockQuestionService) Question(ctx context.Context, briefID, questionID int64) (*service.Question, error) {
	args := m.Called(ctx, briefID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Question), args.Error(1)
}

func (m *MockQuestionService) PublishAnswer(ctx context.Context, briefID int64, user *model.User, req service.PublishAnswerRequest) (*model.BriefClarificationQuestion, error) {
	args := m.Called(ctx, briefID, user, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BriefClarificationQuestion), args.Error(1)
}

type MockAssessorService struct {
	mock.Mock
}

func (m *MockAssessorService) List(ctx context.Context, briefID int64, user *model.User) ([]model.BriefAssessor, error) {
	args := m.Called(ctx, briefID, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BriefAssessor), args.Error(1)
}

func (m *MockAssessorService) Add(ctx context.Context, briefID int64, user *model.User, in []service.AssessorInput) ([]model.BriefAssessor, error) {
	args := m.Called(ctx, briefID, user, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BriefAssessor), args.Error(1)
}
