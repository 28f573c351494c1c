package mocks

import (
	"context"
	"io"

	"marketapi/internal/model"
	"marketapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockBriefResponseService struct {
	mock.Mock
}

func (m *MockBriefResponseService) CanRespond(ctx context.Context, briefID int64, user *model.User) (*model.Supplier, *model.Brief, error) {
	args := m.Called(ctx, briefID, user)
	sup, _ := args.Get(0).(*model.Supplier)
	b, _ := args.Get(1).(*model.Brief)
	return sup, b, args.Error(2)
}

func (m *MockBriefResponseService) Create(ctx context.Context, briefID int64, user *model.User, data map[string]any) (*model.BriefResponse, error) {
	args := m.Called(ctx, briefID, user, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BriefResponse), args.Error(1)
}

func (m *MockBriefResponseService) Get(ctx context.Context, id int64, user *model.User) (*model.BriefResponse, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BriefResponse), args.Error(1)
}

func (m *MockBriefResponseService) Withdraw(ctx context.Context, id int64, user *model.User) (*model.BriefResponse, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BriefResponse), args.Error(1)
}

func (m *MockBriefResponseService) ListForBrief(ctx context.Context, briefID int64, user *model.User) (*service.BriefResponses, error) {
	args := m.Called(ctx, briefID, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BriefResponses), args.Error(1)
}

func (m *MockBriefResponseService) ListForSupplier(ctx context.Context, user *model.User) ([]model.SupplierResponse, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SupplierResponse), args.Error(1)
}

func (m *MockBriefResponseService) UploadDocument(ctx context.Context, briefID int64, code int64, slug string, user *model.User, r io.Reader, size int64) (string, error) {
	args := m.Called(ctx, briefID, code, slug, user, r, size)
	return args.String(0), args.Error(1)
}

func (m *MockBriefResponseService) DownloadDocument(ctx context.Context, briefID int64, code int64, slug string, user *model.User) (*service.Document, error) {
	args := m.Called(ctx, briefID, code, slug, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Document), args.Error(1)
}

func (m *MockBriefResponseService) GetContact(ctx context.Context, briefID int64, user *model.User) (*model.BriefResponseContact, error) {
	args := m.Called(ctx, briefID, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BriefResponseContact), args.Error(1)
}

func (m *MockBriefResponseService) UpdateContact(ctx context.Context, briefID int64, user *model.User, email string) (*model.BriefResponseContact, error) {
	args := m.Called(ctx, briefID, user, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BriefResponseContact), args.Error(1)
}
