package mocks

import (
	"context"

	"marketapi/internal/model"
	"marketapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockBriefService struct {
	mock.Mock
}

func (m *MockBriefService) Get(ctx context.Context, id int64, user *model.User) (*service.BriefDetail, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BriefDetail), args.Error(1)
}

func (m *MockBriefService) UserStatus(ctx context.Context, id int64, user *model.User) (*service.BriefUserStatusView, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BriefUserStatusView), args.Error(1)
}

func (m *MockBriefService) Sellers(ctx context.Context, id int64, user *model.User) (*service.BriefSellers, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BriefSellers), args.Error(1)
}

func (m *MockBriefService) NotifySellers(ctx context.Context, id int64, user *model.User, req service.NotifySellersRequest) error {
	args := m.Called(ctx, id, user, req)
	return args.Error(0)
}

func (m *MockBriefService) Create(ctx context.Context, user *model.User, req service.CreateBriefRequest) (*service.BriefDetail, error) {
	args := m.Called(ctx, user, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BriefDetail), args.Error(1)
}

func (m *MockBriefService) Update(ctx context.Context, id int64, user *model.User, data map[string]any) (*service.BriefDetail, error) {
	args := m.Called(ctx, id, user, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BriefDetail), args.Error(1)
}

func (m *MockBriefService) Publish(ctx context.Context, id int64, user *model.User) (*service.BriefDetail, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BriefDetail), args.Error(1)
}

func (m *MockBriefService) List(ctx context.Context, page int, perPage int) (*service.BriefPage, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BriefPage), args.Error(1)
}

func (m *MockBriefService) Dashboard(ctx context.Context, user *model.User, status string) (*service.Dashboard, error) {
	args := m.Called(ctx, user, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Dashboard), args.Error(1)
}

func (m *MockBriefService) NotifyClosed(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
