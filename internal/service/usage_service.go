package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"siteledger/internal/domain"
	"siteledger/internal/port"
)

// UsageService reports parse spend and run history.
type UsageService interface {
	Daily(ctx context.Context, userID uuid.UUID, day time.Time) (*domain.UsageEntry, error)
	Range(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.UsageEntry, error)
	Parses(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.ParseRecord, int, error)
}

type usageService struct {
	usageRepo    port.UsageRepository
	parseLogRepo port.ParseLogRepository
}

// NewUsageService creates a new UsageService.
func NewUsageService(usageRepo port.UsageRepository, parseLogRepo port.ParseLogRepository) UsageService {
	return &usageService{usageRepo: usageRepo, parseLogRepo: parseLogRepo}
}

func (s *usageService) Daily(ctx context.Context, userID uuid.UUID, day time.Time) (*domain.UsageEntry, error) {
	day = day.UTC().Truncate(24 * time.Hour)
	entries, err := s.usageRepo.ListRange(ctx, userID, day, day)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return &domain.UsageEntry{UserID: userID, Day: day}, nil
	}
	return &entries[0], nil
}

func (s *usageService) Range(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.UsageEntry, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end before start", domain.ErrInvalidInput)
	}
	return s.usageRepo.ListRange(ctx, userID, from, to)
}

func (s *usageService) Parses(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.ParseRecord, int, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.parseLogRepo.ListByUser(ctx, userID, offset, limit)
}
