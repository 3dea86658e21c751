package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProviderSettings holds a user's configuration for a single parsing provider.
type ProviderSettings struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	Enabled bool   `json:"enabled"`
}

// ParserSettings is a user's invoice-parsing configuration. It is loaded once
// per parse request and treated as immutable for the duration of the call.
type ParserSettings struct {
	UserID              uuid.UUID                   `json:"user_id"`
	DefaultStrategy     string                      `json:"default_strategy"`
	ProviderOrder       []string                    `json:"provider_order"`
	Providers           map[string]ProviderSettings `json:"providers"`
	MaxCostPerDocument  float64                     `json:"max_cost_per_document"`
	DailyCostLimit      float64                     `json:"daily_cost_limit"`
	EnableFallback      bool                        `json:"enable_fallback"`
	CollectTrainingData bool                        `json:"collect_training_data"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

// UsageEntry is one day of accumulated parse spend for a user.
type UsageEntry struct {
	UserID          uuid.UUID `db:"user_id" json:"user_id"`
	Day             time.Time `db:"day" json:"day"`
	DocumentsParsed int       `db:"documents_parsed" json:"documents_parsed"`
	TotalCost       float64   `db:"total_cost" json:"total_cost"`
}

// ParseRecord is the persisted summary of one orchestration run.
type ParseRecord struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	UserID       uuid.UUID       `db:"user_id" json:"user_id"`
	Strategy     string          `db:"strategy" json:"strategy"`
	Success      bool            `db:"success" json:"success"`
	BestEffort   bool            `db:"best_effort" json:"best_effort"`
	Confidence   float64         `db:"confidence" json:"confidence"`
	TotalCost    float64         `db:"total_cost" json:"total_cost"`
	AttemptCount int             `db:"attempt_count" json:"attempt_count"`
	Attempts     json.RawMessage `db:"attempts" json:"attempts"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// TrainingSample captures an accepted extraction for later fine-tuning export.
// Only written when the user has opted in via collect_training_data.
type TrainingSample struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	UserID     uuid.UUID       `db:"user_id" json:"user_id"`
	ProviderID string          `db:"provider_id" json:"provider_id"`
	Confidence float64         `db:"confidence" json:"confidence"`
	SourceText string          `db:"source_text" json:"source_text"`
	Fields     json.RawMessage `db:"fields" json:"fields"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Party is a billing party on an invoice (vendor or customer).
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
}

// LineItem is a single billed line on a construction invoice.
type LineItem struct {
	Description string  `json:"description"`
	CostCode    string  `json:"cost_code"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// Totals holds the invoice-level amounts.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	Tax       float64 `json:"tax"`
	Retention float64 `json:"retention"`
	Total     float64 `json:"total"`
}

// InvoiceFields is the structured extraction result for a construction invoice.
type InvoiceFields struct {
	InvoiceNumber string     `json:"invoice_number"`
	InvoiceDate   string     `json:"invoice_date"`
	DueDate       string     `json:"due_date"`
	Currency      string     `json:"currency"`
	Project       string     `json:"project"`
	Vendor        Party      `json:"vendor"`
	Customer      Party      `json:"customer"`
	LineItems     []LineItem `json:"line_items"`
	Totals        Totals     `json:"totals"`
	Notes         string     `json:"notes"`
}
