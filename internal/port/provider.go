package port

import (
	"context"

	"siteledger/internal/domain"
)

// ParseInput carries the pre-extracted invoice text for one parse attempt.
// Text extraction itself happens upstream; this subsystem only sees plain text.
type ParseInput struct {
	Text           string
	PageCount      int
	ExpectedFormat domain.ExpectedFormat
}

// AttemptResult is one provider's outcome for one input. Created fresh per
// attempt and immutable afterwards; the orchestrator aggregates these into
// the attempts log returned to the caller.
type AttemptResult struct {
	ProviderID string                `json:"provider_id"`
	Success    bool                  `json:"success"`
	Confidence float64               `json:"confidence"`
	Fields     *domain.InvoiceFields `json:"fields,omitempty"`
	Cost       float64               `json:"cost"`
	DurationMs int64                 `json:"duration_ms"`
	Error      string                `json:"error,omitempty"`
}

// InvoiceProvider abstracts one text-to-structured-invoice extraction backend,
// LLM-based or traditional. A transport or provider error is returned as an
// ordinary error so the orchestrator can continue the fallback chain; a panic
// is treated as fatal and aborts the whole run.
type InvoiceProvider interface {
	Parse(ctx context.Context, in ParseInput) (*AttemptResult, error)

	// EstimateCost returns the expected cost of calling Parse with this
	// input, used for the budget check before the call is made.
	EstimateCost(in ParseInput) float64
}
