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

type parseLogRepo struct {
	db *sqlx.DB
}

// NewParseLogRepo creates a new PostgreSQL-backed ParseLogRepository.
func NewParseLogRepo(db *sqlx.DB) port.ParseLogRepository {
	return &parseLogRepo{db: db}
}

func (r *parseLogRepo) Create(ctx context.Context, record *domain.ParseRecord) error {
	record.ID = uuid.New()
	record.CreatedAt = time.Now().UTC()

	query := `INSERT INTO parse_log (id, user_id, strategy, success, best_effort,
		confidence, total_cost, attempt_count, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.UserID, record.Strategy, record.Success, record.BestEffort,
		record.Confidence, record.TotalCost, record.AttemptCount, record.Attempts,
		record.CreatedAt)
	if err != nil {
		return fmt.Errorf("parseLogRepo.Create: %w", err)
	}
	return nil
}

func (r *parseLogRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.ParseRecord, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM parse_log WHERE user_id = $1", userID)
	if err != nil {
		return nil, 0, fmt.Errorf("parseLogRepo.ListByUser count: %w", err)
	}

	var records []domain.ParseRecord
	err = r.db.SelectContext(ctx, &records,
		"SELECT * FROM parse_log WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("parseLogRepo.ListByUser: %w", err)
	}
	return records, total, nil
}
