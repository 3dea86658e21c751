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

type trainingRepo struct {
	db *sqlx.DB
}

// NewTrainingRepo creates a new PostgreSQL-backed TrainingRepository.
func NewTrainingRepo(db *sqlx.DB) port.TrainingRepository {
	return &trainingRepo{db: db}
}

func (r *trainingRepo) Create(ctx context.Context, sample *domain.TrainingSample) error {
	sample.ID = uuid.New()
	sample.CreatedAt = time.Now().UTC()

	query := `INSERT INTO training_samples (id, user_id, provider_id, confidence,
		source_text, fields, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		sample.ID, sample.UserID, sample.ProviderID, sample.Confidence,
		sample.SourceText, sample.Fields, sample.CreatedAt)
	if err != nil {
		return fmt.Errorf("trainingRepo.Create: %w", err)
	}
	return nil
}
