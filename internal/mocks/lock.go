package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockLocker struct {
	mock.Mock
	Released int
}

// Acquire hands out a release func that counts its calls in Released.
func (m *MockLocker) Acquire(ctx context.Context, loanID uuid.UUID) (func(), error) {
	args := m.Called(ctx, loanID)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func() { m.Released++ }, nil
}
