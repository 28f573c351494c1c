package mocks

import (
	"context"

	"marketapi/internal/model"
	"marketapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockSupplierService struct {
	mock.Mock
}

func (m *MockSupplierService) Get(ctx context.Context, code int64) (*model.Supplier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supplier), args.Error(1)
}

func (m *MockSupplierService) List(ctx context.Context, name string, page int, perPage int) (*service.SupplierPage, error) {
	args := m.Called(ctx, name, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SupplierPage), args.Error(1)
}

func (m *MockSupplierService) ABNUsed(ctx context.Context, abn string) (bool, error) {
	args := m.Called(ctx, abn)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierService) ABNLookup(ctx context.Context, abn string) (string, error) {
	args := m.Called(ctx, abn)
	return args.String(0), args.Error(1)
}

func (m *MockSupplierService) Messages(ctx context.Context, code int64, user *model.User, skipApplicationCheck bool) (*model.SupplierMessages, error) {
	args := m.Called(ctx, code, user, skipApplicationCheck)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SupplierMessages), args.Error(1)
}

type MockDomainService struct {
	mock.Mock
}

func (m *MockDomainService) Get(ctx context.Context, nameOrID string) (*model.Domain, error) {
	args := m.Called(ctx, nameOrID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Domain), args.Error(1)
}

func (m *MockDomainService) Framework(ctx context.Context, slug string) (*model.Framework, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Framework), args.Error(1)
}
