package mocks

import (
	"context"

	"marketapi/internal/notify"

	"github.com/stretchr/testify/mock"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Enqueue(ctx context.Context, n *notify.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
