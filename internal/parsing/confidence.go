package parsing

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/agext/levenshtein"

	"siteledger/internal/domain"
)

// Scorer estimates extraction confidence for results whose provider does not
// report its own (the traditional extractor, or an LLM response with no
// confidence_scores block).
type Scorer interface {
	Score(fields *domain.InvoiceFields, sourceText string) float64
}

// ScorerWeights are the component weights of the default scorer.
type ScorerWeights struct {
	Description   float64
	PriceRatio    float64
	QuantityRatio float64
	CategoryMatch float64
}

// WeightedScorer scores an extraction as a weighted sum of description
// similarity, price alignment, quantity consistency, and cost-code coverage,
// capped at Cap.
type WeightedScorer struct {
	Weights ScorerWeights
	Cap     float64
}

// DefaultScorer returns the scorer with the standard weights and a 0.95 cap.
func DefaultScorer() *WeightedScorer {
	return &WeightedScorer{
		Weights: ScorerWeights{
			Description:   0.40,
			PriceRatio:    0.25,
			QuantityRatio: 0.15,
			CategoryMatch: 0.20,
		},
		Cap: 0.95,
	}
}

// costCategoryKeywords are common construction trade/cost categories used for
// the category-match component.
var costCategoryKeywords = []string{
	"concrete", "electrical", "plumbing", "lumber", "framing", "drywall",
	"hvac", "roofing", "masonry", "excavation", "grading", "insulation",
	"paint", "flooring", "steel", "rebar", "labor", "equipment", "rental",
	"demolition", "site work", "landscaping", "windows", "doors",
}

func (s *WeightedScorer) Score(fields *domain.InvoiceFields, sourceText string) float64 {
	if fields == nil {
		return 0
	}

	score := s.Weights.Description*descriptionSimilarity(fields.LineItems, sourceText) +
		s.Weights.PriceRatio*priceAlignment(fields) +
		s.Weights.QuantityRatio*quantityConsistency(fields.LineItems) +
		s.Weights.CategoryMatch*categoryCoverage(fields.LineItems)

	if score > s.Cap {
		return s.Cap
	}
	if score < 0 {
		return 0
	}
	return score
}

// descriptionSimilarity is the mean, over extracted line items, of the best
// Levenshtein similarity between the item description and any source line.
func descriptionSimilarity(items []domain.LineItem, sourceText string) float64 {
	if len(items) == 0 {
		return 0
	}
	lines := strings.Split(strings.ToLower(sourceText), "\n")
	var sum float64
	for _, item := range items {
		desc := strings.ToLower(strings.TrimSpace(item.Description))
		if desc == "" {
			continue
		}
		var best float64
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if sim := levenshtein.Match(desc, line, nil); sim > best {
				best = sim
			}
			if strings.Contains(line, desc) {
				best = 1
				break
			}
		}
		sum += best
	}
	return sum / float64(len(items))
}

// priceAlignment compares the sum of line-item totals against the stated
// subtotal (or grand total when no subtotal was extracted).
func priceAlignment(fields *domain.InvoiceFields) float64 {
	var lineSum float64
	for _, item := range fields.LineItems {
		lineSum += item.Total
	}
	stated := fields.Totals.Subtotal
	if stated == 0 {
		stated = fields.Totals.Total
	}
	if lineSum <= 0 || stated <= 0 {
		return 0
	}
	ratio := lineSum / stated
	if ratio > 1 {
		ratio = 1 / ratio
	}
	return ratio
}

// quantityConsistency is the fraction of line items whose quantity times unit
// price matches the line total within 1%.
func quantityConsistency(items []domain.LineItem) float64 {
	if len(items) == 0 {
		return 0
	}
	var consistent int
	for _, item := range items {
		if item.Quantity <= 0 || item.UnitPrice <= 0 || item.Total <= 0 {
			continue
		}
		expected := item.Quantity * item.UnitPrice
		if math.Abs(expected-item.Total) <= 0.01*item.Total {
			consistent++
		}
	}
	return float64(consistent) / float64(len(items))
}

// categoryCoverage is the fraction of line items carrying a cost code or a
// recognizable trade category keyword.
func categoryCoverage(items []domain.LineItem) float64 {
	if len(items) == 0 {
		return 0
	}
	var matched int
	for _, item := range items {
		if strings.TrimSpace(item.CostCode) != "" {
			matched++
			continue
		}
		desc := strings.ToLower(item.Description)
		for _, kw := range costCategoryKeywords {
			if strings.Contains(desc, kw) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(items))
}

// MeanConfidence averages the numeric leaves of a provider-reported
// confidence_scores object. Returns 0 for empty or unparseable input.
func MeanConfidence(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return 0
	}
	sum, count := walkConfidence(decoded)
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func walkConfidence(node interface{}) (sum float64, count int) {
	switch v := node.(type) {
	case float64:
		if v >= 0 && v <= 1 {
			return v, 1
		}
	case map[string]interface{}:
		for _, child := range v {
			s, c := walkConfidence(child)
			sum += s
			count += c
		}
	case []interface{}:
		for _, child := range v {
			s, c := walkConfidence(child)
			sum += s
			count += c
		}
	}
	return sum, count
}
