package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"siteledger/internal/domain"
)

// MockSettingsRepo is a mock implementation of port.SettingsRepository.
type MockSettingsRepo struct {
	mock.Mock
}

func (m *MockSettingsRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.ParserSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParserSettings), args.Error(1)
}

func (m *MockSettingsRepo) Upsert(ctx context.Context, settings *domain.ParserSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}
