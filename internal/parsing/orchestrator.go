package parsing

import (
	"context"
	"fmt"
	"log"
	"time"

	"siteledger/internal/domain"
	"siteledger/internal/port"
)

// Thresholds are the two confidence constants of the orchestration: Accept
// short-circuits the chain, UsableFloor qualifies a best-effort result.
type Thresholds struct {
	Accept      float64
	UsableFloor float64
}

// RunConfig is the per-call configuration for one orchestration run, built
// from the caller's settings. Immutable for the duration of the call.
type RunConfig struct {
	Strategy       string
	ProviderOrder  []string
	Providers      map[string]domain.ProviderSettings
	EnableFallback bool
	Limits         BudgetLimits
	DocumentSpent  float64
	DailySpent     float64
}

// SkippedProvider records a chain entry that was never invoked and why.
type SkippedProvider struct {
	ProviderID string `json:"provider_id"`
	Reason     string `json:"reason"`
}

// Outcome is the orchestrator's final answer for one input.
// TotalCost always equals the sum of Attempts[].Cost; skipped providers
// contribute nothing.
type Outcome struct {
	Success    bool                 `json:"success"`
	BestEffort bool                 `json:"best_effort"`
	Confidence float64              `json:"confidence"`
	TotalCost  float64              `json:"total_cost"`
	Strategy   string               `json:"strategy"`
	Attempts   []port.AttemptResult `json:"attempts"`
	Skipped    []SkippedProvider    `json:"skipped,omitempty"`
	BestResult *port.AttemptResult  `json:"best_result,omitempty"`
}

// Orchestrator walks a strategy's fallback chain, invoking providers in
// priority order until one result is accepted. Attempts are strictly
// sequential: the budget must be re-checked against accumulated spend before
// each call, so speculative parallel attempts would defeat the cost guard.
// Each call is independent; the orchestrator holds no mutable state.
type Orchestrator struct {
	strategies *StrategyRegistry
	registry   *ProviderRegistry
	thresholds Thresholds
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(strategies *StrategyRegistry, registry *ProviderRegistry, thresholds Thresholds) *Orchestrator {
	return &Orchestrator{
		strategies: strategies,
		registry:   registry,
		thresholds: thresholds,
	}
}

// Strategies exposes the strategy registry for listing endpoints.
func (o *Orchestrator) Strategies() *StrategyRegistry {
	return o.strategies
}

type chainEntry struct {
	id       string
	provider port.InvoiceProvider
}

// ParseInvoice runs the fallback chain for one input. Configuration problems
// (unknown strategy, no usable provider, invalid input) are returned as
// errors before any provider is invoked; everything that happens after the
// first attempt is reported through the Outcome, never as a raw error.
func (o *Orchestrator) ParseInvoice(ctx context.Context, in port.ParseInput, run RunConfig) (*Outcome, error) {
	if in.Text == "" {
		return nil, fmt.Errorf("%w: text must not be empty", domain.ErrInvalidInput)
	}
	if in.PageCount < 1 {
		return nil, fmt.Errorf("%w: page count must be at least 1", domain.ErrInvalidInput)
	}

	chain, err := o.strategies.Chain(run.Strategy)
	if err != nil {
		return nil, err
	}
	chain = reorderChain(chain, run.ProviderOrder)

	outcome := &Outcome{Strategy: run.Strategy}

	var entries []chainEntry
	for _, id := range chain {
		cfg, ok := run.Providers[id]
		if !ok || !cfg.Enabled {
			outcome.Skipped = append(outcome.Skipped, SkippedProvider{ProviderID: id, Reason: "provider disabled"})
			continue
		}
		if id != domain.ProviderHeuristic && cfg.APIKey == "" {
			outcome.Skipped = append(outcome.Skipped, SkippedProvider{ProviderID: id, Reason: "missing api key"})
			continue
		}
		p, err := o.registry.Build(id, cfg)
		if err != nil {
			return nil, err
		}
		entries = append(entries, chainEntry{id: id, provider: p})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: strategy %s", domain.ErrNoUsableProvider, run.Strategy)
	}

	documentSpent := run.DocumentSpent
	dailySpent := run.DailySpent

	for _, entry := range entries {
		if ctxErr := ctx.Err(); ctxErr != nil {
			outcome.Skipped = append(outcome.Skipped, SkippedProvider{
				ProviderID: entry.id,
				Reason:     fmt.Sprintf("canceled: %v", ctxErr),
			})
			break
		}

		decision := CheckBudget(entry.id, entry.provider.EstimateCost(in), documentSpent, dailySpent, run.Limits)
		if !decision.Allowed {
			log.Printf("parsing.Orchestrator: %v", decision.Reason)
			outcome.Skipped = append(outcome.Skipped, SkippedProvider{
				ProviderID: entry.id,
				Reason:     decision.Reason.Error(),
			})
			if !run.EnableFallback {
				break
			}
			continue
		}

		attempt, fatal := o.attempt(ctx, entry.id, entry.provider, in)
		outcome.Attempts = append(outcome.Attempts, *attempt)
		outcome.TotalCost += attempt.Cost
		documentSpent += attempt.Cost
		dailySpent += attempt.Cost

		if attempt.Success && attempt.Confidence >= o.thresholds.Accept {
			outcome.Success = true
			outcome.Confidence = attempt.Confidence
			outcome.BestResult = attempt
			return outcome, nil
		}
		if fatal {
			break
		}
		if !run.EnableFallback {
			break
		}
	}

	// Chain exhausted: fall back to the best usable attempt, if any.
	if best := bestUsable(outcome.Attempts, o.thresholds.UsableFloor); best != nil {
		outcome.Success = true
		outcome.BestEffort = true
		outcome.Confidence = best.Confidence
		outcome.BestResult = best
	}
	return outcome, nil
}

// attempt invokes one provider, measuring duration and converting both errors
// and panics into attempt records. A panic marks the run fatal.
func (o *Orchestrator) attempt(ctx context.Context, id string, p port.InvoiceProvider, in port.ParseInput) (res *port.AttemptResult, fatal bool) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("parsing.Orchestrator: provider %s panicked: %v", id, r)
			res = &port.AttemptResult{
				ProviderID: id,
				Error:      fmt.Sprintf("provider panic: %v", r),
				DurationMs: time.Since(start).Milliseconds(),
			}
			fatal = true
		}
	}()

	out, err := p.Parse(ctx, in)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		log.Printf("parsing.Orchestrator: %s failed: %v", id, err)
		res = &port.AttemptResult{
			ProviderID: id,
			Error:      err.Error(),
			DurationMs: elapsed,
		}
		if out != nil {
			res.Cost = out.Cost
		}
		return res, false
	}

	out.ProviderID = id
	out.DurationMs = elapsed
	return out, false
}

// bestUsable returns the successful attempt with the highest confidence at or
// above the usable floor. Ties go to the earlier chain position.
func bestUsable(attempts []port.AttemptResult, floor float64) *port.AttemptResult {
	bestIdx := -1
	for i := range attempts {
		if !attempts[i].Success || attempts[i].Confidence < floor {
			continue
		}
		if bestIdx == -1 || attempts[i].Confidence > attempts[bestIdx].Confidence {
			bestIdx = i
		}
	}
	if bestIdx == -1 {
		return nil
	}
	return &attempts[bestIdx]
}

// reorderChain moves providers named in the user's priority order to the
// front, keeping the strategy's relative order for the rest.
func reorderChain(chain, order []string) []string {
	if len(order) == 0 {
		return chain
	}
	inChain := make(map[string]bool, len(chain))
	for _, id := range chain {
		inChain[id] = true
	}
	reordered := make([]string, 0, len(chain))
	taken := make(map[string]bool, len(chain))
	for _, id := range order {
		if inChain[id] && !taken[id] {
			reordered = append(reordered, id)
			taken[id] = true
		}
	}
	for _, id := range chain {
		if !taken[id] {
			reordered = append(reordered, id)
		}
	}
	return reordered
}
