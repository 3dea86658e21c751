package parsing_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"siteledger/internal/domain"
	"siteledger/internal/parsing"
)

func TestMeanConfidence_NestedObject(t *testing.T) {
	raw := json.RawMessage(`{
		"invoice_number": 0.9,
		"totals": {"subtotal": 0.8, "total": 0.7},
		"line_items": [{"description": 0.6}]
	}`)

	assert.InDelta(t, 0.75, parsing.MeanConfidence(raw), 1e-9)
}

func TestMeanConfidence_IgnoresOutOfRangeValues(t *testing.T) {
	raw := json.RawMessage(`{"a": 0.5, "b": 42, "c": -1}`)

	assert.InDelta(t, 0.5, parsing.MeanConfidence(raw), 1e-9)
}

func TestMeanConfidence_EmptyAndInvalid(t *testing.T) {
	assert.Zero(t, parsing.MeanConfidence(nil))
	assert.Zero(t, parsing.MeanConfidence(json.RawMessage(`{}`)))
	assert.Zero(t, parsing.MeanConfidence(json.RawMessage(`not json`)))
}

func TestWeightedScorer_ConsistentExtractionScoresHigh(t *testing.T) {
	text := "ACME Concrete\nConcrete pour foundation  10  CY  150.00  1500.00\nSubtotal: $1,500.00\nTotal: $1,575.00"
	fields := &domain.InvoiceFields{
		LineItems: []domain.LineItem{
			{Description: "Concrete pour foundation", CostCode: "03-300", Quantity: 10, Unit: "CY", UnitPrice: 150, Total: 1500},
		},
		Totals: domain.Totals{Subtotal: 1500, Total: 1575},
	}

	score := parsing.DefaultScorer().Score(fields, text)

	assert.Greater(t, score, 0.9)
	assert.LessOrEqual(t, score, 0.95)
}

func TestWeightedScorer_NilAndEmptyFields(t *testing.T) {
	s := parsing.DefaultScorer()

	assert.Zero(t, s.Score(nil, "anything"))
	assert.Zero(t, s.Score(&domain.InvoiceFields{}, "anything"))
}

func TestWeightedScorer_InconsistentPricesScoreLow(t *testing.T) {
	text := "Vendor\nGravel  1  TON  10.00  10.00\nTotal: $9,999.00"
	fields := &domain.InvoiceFields{
		LineItems: []domain.LineItem{
			{Description: "unrelated text entirely", Quantity: 1, UnitPrice: 10, Total: 50},
		},
		Totals: domain.Totals{Total: 9999},
	}

	score := parsing.DefaultScorer().Score(fields, text)

	assert.Less(t, score, 0.5)
}
