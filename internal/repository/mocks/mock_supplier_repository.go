package mocks

import (
	"context"

	"marketapi/internal/model"
	"marketapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByCode(ctx context.Context, code int64) (*model.Supplier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByABN(ctx context.Context, abn string) (*model.Supplier, error) {
	args := m.Called(ctx, abn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) List(ctx context.Context, name string, pq repository.PageQuery) (*repository.PageResult[model.Supplier], error) {
	args := m.Called(ctx, name, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Supplier]), args.Error(1)
}

func (m *MockSupplierRepository) FindApplication(ctx context.Context, id int64) (*model.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Application), args.Error(1)
}

func (m *MockSupplierRepository) ApplicationsForSupplier(ctx context.Context, code int64, appType string) ([]model.Application, error) {
	args := m.Called(ctx, code, appType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Application), args.Error(1)
}

func (m *MockSupplierRepository) ApplicationExistsForABN(ctx context.Context, abn string) (bool, error) {
	args := m.Called(ctx, abn)
	return args.Bool(0), args.Error(1)
}

type MockDomainRepository struct {
	mock.Mock
}

func (m *MockDomainRepository) FindByID(ctx context.Context, id int64) (*model.Domain, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Domain), args.Error(1)
}

func (m *MockDomainRepository) FindByName(ctx context.Context, name string) (*model.Domain, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Domain), args.Error(1)
}
