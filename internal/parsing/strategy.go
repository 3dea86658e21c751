package parsing

import (
	"fmt"
	"sort"

	"siteledger/internal/domain"
)

// Strategy names. A strategy is a named, ordered fallback chain of provider
// identifiers; the set is static configuration, not mutable at runtime.
const (
	StrategyLLMPrimary         = "llm-primary"
	StrategyTraditionalPrimary = "traditional-primary"
	StrategyHybrid             = "hybrid"
	StrategyCostOptimized      = "cost-optimized"
	StrategyAccuracyOptimized  = "accuracy-optimized"
)

// defaultChains is the built-in strategy table.
var defaultChains = map[string][]string{
	StrategyLLMPrimary:         {domain.ProviderClaude, domain.ProviderOpenAI, domain.ProviderGemini, domain.ProviderHeuristic},
	StrategyTraditionalPrimary: {domain.ProviderHeuristic, domain.ProviderClaude, domain.ProviderOpenAI},
	StrategyHybrid:             {domain.ProviderHeuristic, domain.ProviderClaude, domain.ProviderGemini},
	StrategyCostOptimized:      {domain.ProviderHeuristic, domain.ProviderGemini, domain.ProviderOpenAI, domain.ProviderClaude},
	StrategyAccuracyOptimized:  {domain.ProviderClaude, domain.ProviderOpenAI, domain.ProviderGemini},
}

// StrategyRegistry resolves strategy names to fallback chains.
type StrategyRegistry struct {
	chains map[string][]string
}

// NewStrategyRegistry creates a registry with the built-in strategy table.
func NewStrategyRegistry() *StrategyRegistry {
	chains := make(map[string][]string, len(defaultChains))
	for name, chain := range defaultChains {
		chains[name] = append([]string(nil), chain...)
	}
	return &StrategyRegistry{chains: chains}
}

// Chain returns a copy of the fallback chain for a strategy name.
// Unknown names fail with domain.ErrUnknownStrategy.
func (r *StrategyRegistry) Chain(name string) ([]string, error) {
	chain, ok := r.chains[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownStrategy, name)
	}
	return append([]string(nil), chain...), nil
}

// Known reports whether a strategy name exists.
func (r *StrategyRegistry) Known(name string) bool {
	_, ok := r.chains[name]
	return ok
}

// Names returns all strategy names in sorted order.
func (r *StrategyRegistry) Names() []string {
	names := make([]string, 0, len(r.chains))
	for name := range r.chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
