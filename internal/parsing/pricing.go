package parsing

// tokenRate is the USD price per 1K prompt/completion tokens for one model.
type tokenRate struct {
	In  float64
	Out float64
}

var modelRates = map[string]tokenRate{
	"claude-sonnet-4-20250514":  {In: 0.003, Out: 0.015},
	"claude-3-5-haiku-20241022": {In: 0.0008, Out: 0.004},
	"gpt-4o":                    {In: 0.0025, Out: 0.01},
	"gpt-4o-mini":               {In: 0.00015, Out: 0.0006},
	"gemini-2.0-flash":          {In: 0.0001, Out: 0.0004},
	"gemini-1.5-pro":            {In: 0.00125, Out: 0.005},
}

// defaultRate is used for models missing from the table so an unlisted model
// is priced conservatively rather than treated as free.
var defaultRate = tokenRate{In: 0.003, Out: 0.015}

// estimatedCompletionTokens is the expected size of a structured invoice
// extraction, used when estimating cost before a call is made.
const estimatedCompletionTokens = 1200

// CostForTokens returns the USD cost of a completed call given actual token usage.
func CostForTokens(model string, promptTokens, completionTokens int) float64 {
	rate, ok := modelRates[model]
	if !ok {
		rate = defaultRate
	}
	return float64(promptTokens)/1000*rate.In + float64(completionTokens)/1000*rate.Out
}

// EstimateTokens approximates the token count of a text (~4 chars per token).
func EstimateTokens(text string) int {
	n := len(text)/4 + 1
	return n
}

// EstimateCallCost predicts the cost of one extraction call before it is made,
// for the budget check. Prompt overhead covers the extraction instructions.
func EstimateCallCost(model, text string) float64 {
	const promptOverheadTokens = 700
	return CostForTokens(model, EstimateTokens(text)+promptOverheadTokens, estimatedCompletionTokens)
}
