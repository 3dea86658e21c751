package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"siteledger/internal/domain"
)

// MockParseLogRepo is a mock implementation of port.ParseLogRepository.
type MockParseLogRepo struct {
	mock.Mock
}

func (m *MockParseLogRepo) Create(ctx context.Context, record *domain.ParseRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockParseLogRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.ParseRecord, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ParseRecord), args.Int(1), args.Error(2)
}
