package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"siteledger/internal/domain"
)

// MockSettingsService is a mock implementation of service.SettingsService.
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get(ctx context.Context, userID uuid.UUID) (*domain.ParserSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParserSettings), args.Error(1)
}

func (m *MockSettingsService) Update(ctx context.Context, settings *domain.ParserSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}
