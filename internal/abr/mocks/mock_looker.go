package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockLooker struct {
	mock.Mock
}

func (m *MockLooker) OrganisationName(ctx context.Context, abn string) (string, error) {
	args := m.Called(ctx, abn)
	return args.String(0), args.Error(1)
}
