package mocks

import (
	"context"

	"marketapi/internal/model"
	"marketapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockTeamService struct {
	mock.Mock
}

func (m *MockTeamService) Create(ctx context.Context, user *model.User) (*model.Team, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Team), args.Error(1)
}

func (m *MockTeamService) Get(ctx context.Context, id int64, user *model.User) (*model.Team, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Team), args.Error(1)
}

func (m *MockTeamService) Update(ctx context.Context, id int64, user *model.User, req service.UpdateTeamRequest) (*model.Team, error) {
	args := m.Called(ctx, id, user, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Team), args.Error(1)
}

func (m *MockTeamService) Complete(ctx context.Context, id int64, user *model.User) (*model.Team, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Team), args.Error(1)
}

func (m *MockTeamService) RequirePermission(ctx context.Context, user *model.User, perm model.Permission) error {
	args := m.Called(ctx, user, perm)
	return args.Error(0)
}
