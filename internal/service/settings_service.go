package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"siteledger/internal/domain"
	"siteledger/internal/parsing"
	"siteledger/internal/port"
)

// SettingsService manages per-user parser settings.
type SettingsService interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.ParserSettings, error)
	Update(ctx context.Context, settings *domain.ParserSettings) error
}

type settingsService struct {
	settingsRepo port.SettingsRepository
	strategies   *parsing.StrategyRegistry
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(settingsRepo port.SettingsRepository, strategies *parsing.StrategyRegistry) SettingsService {
	return &settingsService{settingsRepo: settingsRepo, strategies: strategies}
}

func (s *settingsService) Get(ctx context.Context, userID uuid.UUID) (*domain.ParserSettings, error) {
	return s.settingsRepo.GetByUser(ctx, userID)
}

func (s *settingsService) Update(ctx context.Context, settings *domain.ParserSettings) error {
	if settings.DefaultStrategy != "" && !s.strategies.Known(settings.DefaultStrategy) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownStrategy, settings.DefaultStrategy)
	}
	for _, id := range settings.ProviderOrder {
		if !domain.KnownProviders[id] {
			return fmt.Errorf("%w: %s", domain.ErrUnknownProvider, id)
		}
	}
	for id := range settings.Providers {
		if !domain.KnownProviders[id] {
			return fmt.Errorf("%w: %s", domain.ErrUnknownProvider, id)
		}
	}
	if settings.MaxCostPerDocument < 0 {
		return fmt.Errorf("%w: max cost per document must not be negative", domain.ErrInvalidInput)
	}
	if settings.DailyCostLimit < 0 {
		return fmt.Errorf("%w: daily cost limit must not be negative", domain.ErrInvalidInput)
	}
	return s.settingsRepo.Upsert(ctx, settings)
}
