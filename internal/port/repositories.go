package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"siteledger/internal/domain"
)

// SettingsRepository persists per-user parser settings.
type SettingsRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*domain.ParserSettings, error)
	Upsert(ctx context.Context, settings *domain.ParserSettings) error
}

// UsageRepository persists per-user per-day parse spend.
type UsageRepository interface {
	DaySpend(ctx context.Context, userID uuid.UUID, day time.Time) (float64, error)
	AddSpend(ctx context.Context, userID uuid.UUID, day time.Time, cost float64) error
	ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.UsageEntry, error)
}

// ParseLogRepository persists orchestration run summaries.
type ParseLogRepository interface {
	Create(ctx context.Context, record *domain.ParseRecord) error
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.ParseRecord, int, error)
}

// TrainingRepository persists opt-in training samples.
type TrainingRepository interface {
	Create(ctx context.Context, sample *domain.TrainingSample) error
}
