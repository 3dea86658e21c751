package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"siteledger/internal/domain"
)

// MockUsageRepo is a mock implementation of port.UsageRepository.
type MockUsageRepo struct {
	mock.Mock
}

func (m *MockUsageRepo) DaySpend(ctx context.Context, userID uuid.UUID, day time.Time) (float64, error) {
	args := m.Called(ctx, userID, day)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockUsageRepo) AddSpend(ctx context.Context, userID uuid.UUID, day time.Time, cost float64) error {
	args := m.Called(ctx, userID, day, cost)
	return args.Error(0)
}

func (m *MockUsageRepo) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.UsageEntry, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UsageEntry), args.Error(1)
}
