package domain

// Provider identifiers form a closed set; providers are selected through an
// explicit registry rather than dynamic property lookup.
const (
	ProviderClaude    = "claude"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderHeuristic = "heuristic"
)

// KnownProviders lists every provider identifier the registry may resolve.
var KnownProviders = map[string]bool{
	ProviderClaude:    true,
	ProviderOpenAI:    true,
	ProviderGemini:    true,
	ProviderHeuristic: true,
}

// ExpectedFormat hints at the invoice layout the caller expects.
type ExpectedFormat string

const (
	FormatAny          ExpectedFormat = ""
	FormatProgressBill ExpectedFormat = "progress_bill"
	FormatSupplier     ExpectedFormat = "supplier"
	FormatSubcontract  ExpectedFormat = "subcontract"
)

// KnownFormats lists every accepted expected-format hint.
var KnownFormats = map[ExpectedFormat]bool{
	FormatAny:          true,
	FormatProgressBill: true,
	FormatSupplier:     true,
	FormatSubcontract:  true,
}
