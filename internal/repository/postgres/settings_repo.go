package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"siteledger/internal/domain"
	"siteledger/internal/port"
)

type settingsRepo struct {
	db *sqlx.DB
}

// NewSettingsRepo creates a new PostgreSQL-backed SettingsRepository.
func NewSettingsRepo(db *sqlx.DB) port.SettingsRepository {
	return &settingsRepo{db: db}
}

// settingsRow is the table shape. Providers and provider order are stored as
// jsonb; the repo marshals at the boundary so the domain type stays plain.
type settingsRow struct {
	UserID              uuid.UUID       `db:"user_id"`
	DefaultStrategy     string          `db:"default_strategy"`
	ProviderOrder       json.RawMessage `db:"provider_order"`
	Providers           json.RawMessage `db:"providers"`
	MaxCostPerDocument  float64         `db:"max_cost_per_document"`
	DailyCostLimit      float64         `db:"daily_cost_limit"`
	EnableFallback      bool            `db:"enable_fallback"`
	CollectTrainingData bool            `db:"collect_training_data"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

func (r *settingsRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.ParserSettings, error) {
	var row settingsRow
	err := r.db.GetContext(ctx, &row,
		"SELECT * FROM parser_settings WHERE user_id = $1", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("settingsRepo.GetByUser: %w", err)
	}

	settings := &domain.ParserSettings{
		UserID:              row.UserID,
		DefaultStrategy:     row.DefaultStrategy,
		MaxCostPerDocument:  row.MaxCostPerDocument,
		DailyCostLimit:      row.DailyCostLimit,
		EnableFallback:      row.EnableFallback,
		CollectTrainingData: row.CollectTrainingData,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
	if len(row.ProviderOrder) > 0 {
		if err := json.Unmarshal(row.ProviderOrder, &settings.ProviderOrder); err != nil {
			return nil, fmt.Errorf("settingsRepo.GetByUser provider_order: %w", err)
		}
	}
	if len(row.Providers) > 0 {
		if err := json.Unmarshal(row.Providers, &settings.Providers); err != nil {
			return nil, fmt.Errorf("settingsRepo.GetByUser providers: %w", err)
		}
	}
	return settings, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, settings *domain.ParserSettings) error {
	now := time.Now().UTC()
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now

	orderJSON, err := json.Marshal(settings.ProviderOrder)
	if err != nil {
		return fmt.Errorf("settingsRepo.Upsert provider_order: %w", err)
	}
	providersJSON, err := json.Marshal(settings.Providers)
	if err != nil {
		return fmt.Errorf("settingsRepo.Upsert providers: %w", err)
	}

	query := `INSERT INTO parser_settings (user_id, default_strategy, provider_order, providers,
		max_cost_per_document, daily_cost_limit, enable_fallback, collect_training_data,
		created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			default_strategy = EXCLUDED.default_strategy,
			provider_order = EXCLUDED.provider_order,
			providers = EXCLUDED.providers,
			max_cost_per_document = EXCLUDED.max_cost_per_document,
			daily_cost_limit = EXCLUDED.daily_cost_limit,
			enable_fallback = EXCLUDED.enable_fallback,
			collect_training_data = EXCLUDED.collect_training_data,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		settings.UserID, settings.DefaultStrategy, orderJSON, providersJSON,
		settings.MaxCostPerDocument, settings.DailyCostLimit,
		settings.EnableFallback, settings.CollectTrainingData,
		settings.CreatedAt, settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("settingsRepo.Upsert: %w", err)
	}
	return nil
}
