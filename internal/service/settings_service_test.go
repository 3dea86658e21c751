package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"siteledger/internal/domain"
	"siteledger/internal/parsing"
	"siteledger/internal/service"
	"siteledger/mocks"
)

func newSettingsService() (service.SettingsService, *mocks.MockSettingsRepo) {
	repo := new(mocks.MockSettingsRepo)
	return service.NewSettingsService(repo, parsing.NewStrategyRegistry()), repo
}

func TestSettingsService_Update_Valid(t *testing.T) {
	svc, repo := newSettingsService()

	settings := &domain.ParserSettings{
		UserID:          uuid.New(),
		DefaultStrategy: parsing.StrategyCostOptimized,
		ProviderOrder:   []string{domain.ProviderGemini, domain.ProviderClaude},
		Providers: map[string]domain.ProviderSettings{
			domain.ProviderGemini: {APIKey: "k", Enabled: true},
		},
		MaxCostPerDocument: 0.25,
		DailyCostLimit:     10,
	}
	repo.On("Upsert", mock.Anything, settings).Return(nil)

	err := svc.Update(context.Background(), settings)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSettingsService_Update_UnknownStrategy(t *testing.T) {
	svc, repo := newSettingsService()

	err := svc.Update(context.Background(), &domain.ParserSettings{DefaultStrategy: "fastest"})

	assert.True(t, errors.Is(err, domain.ErrUnknownStrategy))
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSettingsService_Update_UnknownProviderInOrder(t *testing.T) {
	svc, repo := newSettingsService()

	err := svc.Update(context.Background(), &domain.ParserSettings{
		ProviderOrder: []string{"watson"},
	})

	assert.True(t, errors.Is(err, domain.ErrUnknownProvider))
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSettingsService_Update_NegativeBudget(t *testing.T) {
	svc, _ := newSettingsService()

	err := svc.Update(context.Background(), &domain.ParserSettings{MaxCostPerDocument: -1})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	err = svc.Update(context.Background(), &domain.ParserSettings{DailyCostLimit: -5})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSettingsService_Get_PassesThrough(t *testing.T) {
	svc, repo := newSettingsService()

	userID := uuid.New()
	repo.On("GetByUser", mock.Anything, userID).Return(nil, domain.ErrNotFound)

	settings, err := svc.Get(context.Background(), userID)

	assert.Nil(t, settings)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
