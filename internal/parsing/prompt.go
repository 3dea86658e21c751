package parsing

import (
	"fmt"

	"siteledger/internal/domain"
	"siteledger/internal/port"
)

// BuildInvoicePrompt returns the extraction prompt for a construction invoice.
// The pre-extracted document text is embedded directly; providers never see
// the original file.
func BuildInvoicePrompt(in port.ParseInput) string {
	formatHint := ""
	switch in.ExpectedFormat {
	case domain.FormatProgressBill:
		formatHint = "\nThe document is expected to be a progress billing (application for payment); look for retention/retainage amounts and percent-complete columns."
	case domain.FormatSupplier:
		formatHint = "\nThe document is expected to be a material supplier invoice; line items are typically quantity x unit price."
	case domain.FormatSubcontract:
		formatHint = "\nThe document is expected to be a subcontractor invoice; look for contract/PO references and labor line items."
	}

	return fmt.Sprintf(`You are a document data extraction assistant for construction-project invoices. The text below was extracted from a %d-page document. Extract ALL data into the JSON structure described.%s

IMPORTANT INSTRUCTIONS:
- Extract EVERY line item from every page and section (materials, labor, equipment, other charges) into a single flat "line_items" array. Do not skip, summarize, or omit any items.
- Normalize all dates to YYYY-MM-DD format.
- "cost_code" is the project cost code or trade category for the line (e.g. "03-300 Concrete", "Electrical"); use empty string if none is shown.
- Amounts are plain numbers with no currency symbols or thousands separators.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation.

Return two top-level keys: "data" and "confidence_scores".

The "data" object must follow this schema:
{
  "invoice_number": "",
  "invoice_date": "",
  "due_date": "",
  "currency": "",
  "project": "",
  "vendor": {"name": "", "address": "", "tax_id": ""},
  "customer": {"name": "", "address": "", "tax_id": ""},
  "line_items": [
    {
      "description": "",
      "cost_code": "",
      "quantity": 0, "unit": "",
      "unit_price": 0,
      "total": 0
    }
  ],
  "totals": {"subtotal": 0, "tax": 0, "retention": 0, "total": 0},
  "notes": ""
}

The "confidence_scores" object should mirror the "data" structure but with float values between 0.0 and 1.0 indicating your confidence for each extracted field. Use 0.0 for fields not found in the document.

If a field is not present, use empty string for text and 0 for numbers.

DOCUMENT TEXT:
%s`, in.PageCount, formatHint, in.Text)
}
