package heuristic

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"siteledger/internal/domain"
	"siteledger/internal/parsing"
	"siteledger/internal/port"
)

// Provider implements port.InvoiceProvider with regex and keyword heuristics.
// It performs no external calls and incurs no cost; confidence comes from the
// pluggable scorer since the extractor cannot judge its own output.
type Provider struct {
	scorer parsing.Scorer
}

// New creates a heuristic invoice provider.
func New(scorer parsing.Scorer) *Provider {
	return &Provider{scorer: scorer}
}

// EstimateCost is always zero: the extractor runs locally.
func (p *Provider) EstimateCost(port.ParseInput) float64 {
	return 0
}

var (
	invoiceNumberRe = regexp.MustCompile(`(?i)invoice\s*(?:no\.?|number|num)?\s*[:#]+\s*([A-Za-z0-9][A-Za-z0-9._/-]*)`)
	projectRe       = regexp.MustCompile(`(?i)(?:project|job)\s*(?:no\.?|number|name)?\s*[:#]\s*(.+)`)
	dateRe          = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4}`)
	moneyRe         = regexp.MustCompile(`\$?\s*(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+\.\d{1,2}|\d+)`)

	// Line items: description, quantity, optional unit, unit price, total,
	// separated by runs of whitespace as produced by text extraction.
	itemWithUnitRe = regexp.MustCompile(`^(.+?)\s{2,}(\d+(?:\.\d+)?)\s+([A-Za-z]{1,8})\s+\$?([\d,]+(?:\.\d{1,2})?)\s+\$?([\d,]+(?:\.\d{1,2})?)\s*$`)
	itemNoUnitRe   = regexp.MustCompile(`^(.+?)\s{2,}(\d+(?:\.\d+)?)\s+\$?([\d,]+(?:\.\d{1,2})?)\s+\$?([\d,]+(?:\.\d{1,2})?)\s*$`)

	costCodeRe = regexp.MustCompile(`^(\d{2}[-.]\d{3})\s+(.+)$`)
)

func (p *Provider) Parse(_ context.Context, in port.ParseInput) (*port.AttemptResult, error) {
	fields := extract(in.Text)

	if fields.InvoiceNumber == "" && len(fields.LineItems) == 0 && fields.Totals.Total == 0 {
		return nil, fmt.Errorf("no recognizable invoice structure in text")
	}

	return &port.AttemptResult{
		ProviderID: domain.ProviderHeuristic,
		Success:    true,
		Confidence: p.scorer.Score(fields, in.Text),
		Fields:     fields,
		Cost:       0,
	}, nil
}

func extract(text string) *domain.InvoiceFields {
	fields := &domain.InvoiceFields{}
	lines := strings.Split(text, "\n")

	if strings.Contains(text, "$") {
		fields.Currency = "USD"
	}

	for _, rawLine := range lines {
		line := strings.TrimRight(rawLine, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Vendor: first non-empty line of the document, by convention the letterhead.
		if fields.Vendor.Name == "" {
			fields.Vendor.Name = trimmed
			continue
		}

		lower := strings.ToLower(trimmed)

		if m := invoiceNumberRe.FindStringSubmatch(trimmed); m != nil && fields.InvoiceNumber == "" {
			fields.InvoiceNumber = m[1]
		}
		if m := projectRe.FindStringSubmatch(trimmed); m != nil && fields.Project == "" {
			fields.Project = strings.TrimSpace(m[1])
		}
		if d := dateRe.FindString(trimmed); d != "" {
			if strings.Contains(lower, "due") {
				if fields.DueDate == "" {
					fields.DueDate = d
				}
			} else if strings.Contains(lower, "date") && fields.InvoiceDate == "" {
				fields.InvoiceDate = d
			}
		}

		if amount, label := totalLine(lower, trimmed); label != "" {
			switch label {
			case "subtotal":
				fields.Totals.Subtotal = amount
			case "tax":
				fields.Totals.Tax = amount
			case "retention":
				fields.Totals.Retention = amount
			case "total":
				fields.Totals.Total = amount
			}
			continue
		}

		if item, ok := lineItem(line); ok {
			fields.LineItems = append(fields.LineItems, item)
		}
	}

	return fields
}

// totalLine classifies a summary line and returns its last money amount.
func totalLine(lower, line string) (float64, string) {
	var label string
	switch {
	case strings.Contains(lower, "subtotal") || strings.Contains(lower, "sub-total"):
		label = "subtotal"
	case strings.Contains(lower, "retention") || strings.Contains(lower, "retainage"):
		label = "retention"
	case strings.Contains(lower, "tax"):
		label = "tax"
	case strings.Contains(lower, "total"):
		label = "total"
	default:
		return 0, ""
	}
	matches := moneyRe.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return 0, ""
	}
	amount := parseMoney(matches[len(matches)-1][1])
	return amount, label
}

func lineItem(line string) (domain.LineItem, bool) {
	lower := strings.ToLower(line)
	for _, kw := range []string{"subtotal", "total", "tax", "retention", "retainage", "balance"} {
		if strings.Contains(lower, kw) {
			return domain.LineItem{}, false
		}
	}

	if m := itemWithUnitRe.FindStringSubmatch(line); m != nil {
		return buildItem(m[1], m[2], m[3], m[4], m[5]), true
	}
	if m := itemNoUnitRe.FindStringSubmatch(line); m != nil {
		return buildItem(m[1], m[2], "", m[3], m[4]), true
	}
	return domain.LineItem{}, false
}

func buildItem(desc, qty, unit, unitPrice, total string) domain.LineItem {
	item := domain.LineItem{
		Description: strings.TrimSpace(desc),
		Unit:        unit,
		Quantity:    parseMoney(qty),
		UnitPrice:   parseMoney(unitPrice),
		Total:       parseMoney(total),
	}
	if m := costCodeRe.FindStringSubmatch(item.Description); m != nil {
		item.CostCode = m[1]
		item.Description = strings.TrimSpace(m[2])
	}
	return item
}

func parseMoney(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
