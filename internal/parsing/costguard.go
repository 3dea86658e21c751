package parsing

// BudgetLimits holds the cost ceilings for one orchestration run.
// A zero or negative limit means unlimited.
type BudgetLimits struct {
	MaxCostPerDocument float64
	DailyCostLimit     float64
}

// BudgetDecision is the cost guard's verdict for one proposed provider call.
type BudgetDecision struct {
	Allowed bool
	Reason  error
}

// CheckBudget decides whether a proposed provider call fits the remaining
// document and daily budgets. Pure and synchronous; accumulating actual spend
// is the caller's responsibility.
func CheckBudget(provider string, proposed, documentSpent, dailySpent float64, limits BudgetLimits) BudgetDecision {
	if limits.MaxCostPerDocument > 0 && documentSpent+proposed > limits.MaxCostPerDocument {
		return BudgetDecision{Reason: &BudgetExceededError{
			Provider: provider,
			Scope:    "document",
			Proposed: proposed,
			Spent:    documentSpent,
			Limit:    limits.MaxCostPerDocument,
		}}
	}
	if limits.DailyCostLimit > 0 && dailySpent+proposed > limits.DailyCostLimit {
		return BudgetDecision{Reason: &BudgetExceededError{
			Provider: provider,
			Scope:    "daily",
			Proposed: proposed,
			Spent:    dailySpent,
			Limit:    limits.DailyCostLimit,
		}}
	}
	return BudgetDecision{Allowed: true}
}
