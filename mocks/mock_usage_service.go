package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"siteledger/internal/domain"
)

// MockUsageService is a mock implementation of service.UsageService.
type MockUsageService struct {
	mock.Mock
}

func (m *MockUsageService) Daily(ctx context.Context, userID uuid.UUID, day time.Time) (*domain.UsageEntry, error) {
	args := m.Called(ctx, userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UsageEntry), args.Error(1)
}

func (m *MockUsageService) Range(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.UsageEntry, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UsageEntry), args.Error(1)
}

func (m *MockUsageService) Parses(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.ParseRecord, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ParseRecord), args.Int(1), args.Error(2)
}
