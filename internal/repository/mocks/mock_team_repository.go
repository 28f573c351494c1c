package mocks

import (
	"context"

	"marketapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) Create(ctx context.Context, t *model.Team, ownerID int64) (*model.Team, error) {
	args := m.Called(ctx, t, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Team), args.Error(1)
}

func (m *MockTeamRepository) FindByID(ctx context.Context, id int64) (*model.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Team), args.Error(1)
}

func (m *MockTeamRepository) UpdateInfo(ctx context.Context, t *model.Team) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTeamRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockTeamRepository) ApplyChanges(ctx context.Context, teamID int64, cs model.TeamChangeSet) error {
	args := m.Called(ctx, teamID, cs)
	return args.Error(0)
}

func (m *MockTeamRepository) MembershipForUser(ctx context.Context, userID int64) (*model.TeamMember, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TeamMember), args.Error(1)
}

func (m *MockTeamRepository) MembershipsForUsers(ctx context.Context, userIDs []int64) ([]model.TeamMember, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TeamMember), args.Error(1)
}
