package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"siteledger/internal/domain"
	"siteledger/internal/port"
)

type usageRepo struct {
	db *sqlx.DB
}

// NewUsageRepo creates a new PostgreSQL-backed UsageRepository.
func NewUsageRepo(db *sqlx.DB) port.UsageRepository {
	return &usageRepo{db: db}
}

func (r *usageRepo) DaySpend(ctx context.Context, userID uuid.UUID, day time.Time) (float64, error) {
	var spend float64
	err := r.db.GetContext(ctx, &spend,
		"SELECT COALESCE(SUM(total_cost), 0) FROM usage_ledger WHERE user_id = $1 AND day = $2",
		userID, day.UTC().Truncate(24*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("usageRepo.DaySpend: %w", err)
	}
	return spend, nil
}

func (r *usageRepo) AddSpend(ctx context.Context, userID uuid.UUID, day time.Time, cost float64) error {
	query := `INSERT INTO usage_ledger (user_id, day, documents_parsed, total_cost)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (user_id, day) DO UPDATE SET
			documents_parsed = usage_ledger.documents_parsed + 1,
			total_cost = usage_ledger.total_cost + EXCLUDED.total_cost`

	_, err := r.db.ExecContext(ctx, query, userID, day.UTC().Truncate(24*time.Hour), cost)
	if err != nil {
		return fmt.Errorf("usageRepo.AddSpend: %w", err)
	}
	return nil
}

func (r *usageRepo) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.UsageEntry, error) {
	var entries []domain.UsageEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT user_id, day, documents_parsed, total_cost FROM usage_ledger
		 WHERE user_id = $1 AND day >= $2 AND day <= $3 ORDER BY day`,
		userID, from.UTC().Truncate(24*time.Hour), to.UTC().Truncate(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("usageRepo.ListRange: %w", err)
	}
	return entries, nil
}
