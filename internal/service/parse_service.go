package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"siteledger/internal/config"
	"siteledger/internal/domain"
	"siteledger/internal/parsing"
	"siteledger/internal/port"
)

// ParseRequest is one invoice-parsing request from a caller.
type ParseRequest struct {
	Text             string `json:"text"`
	PageCount        int    `json:"page_count"`
	ExpectedFormat   string `json:"expected_format"`
	StrategyOverride string `json:"strategy,omitempty"`
}

// ParseService runs the orchestration for callers and records the side
// effects: usage spend, the parse log, and opt-in training samples.
type ParseService interface {
	Parse(ctx context.Context, userID uuid.UUID, req *ParseRequest) (*parsing.Outcome, error)
	Strategies() []string
}

type parseService struct {
	orchestrator *parsing.Orchestrator
	settingsRepo port.SettingsRepository
	usageRepo    port.UsageRepository
	parseLogRepo port.ParseLogRepository
	trainingRepo port.TrainingRepository
	defaults     config.ParsingConfig
}

// NewParseService creates a new ParseService.
func NewParseService(
	orchestrator *parsing.Orchestrator,
	settingsRepo port.SettingsRepository,
	usageRepo port.UsageRepository,
	parseLogRepo port.ParseLogRepository,
	trainingRepo port.TrainingRepository,
	defaults config.ParsingConfig,
) ParseService {
	return &parseService{
		orchestrator: orchestrator,
		settingsRepo: settingsRepo,
		usageRepo:    usageRepo,
		parseLogRepo: parseLogRepo,
		trainingRepo: trainingRepo,
		defaults:     defaults,
	}
}

func (s *parseService) Parse(ctx context.Context, userID uuid.UUID, req *ParseRequest) (*parsing.Outcome, error) {
	format := domain.ExpectedFormat(req.ExpectedFormat)
	if !domain.KnownFormats[format] {
		return nil, fmt.Errorf("%w: unknown expected format %q", domain.ErrInvalidInput, req.ExpectedFormat)
	}

	settings, err := s.settingsRepo.GetByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("parseService.Parse settings: %w", err)
		}
		settings = s.defaultSettings(userID)
	}

	strategy := settings.DefaultStrategy
	if req.StrategyOverride != "" {
		strategy = req.StrategyOverride
	}

	day := time.Now().UTC().Truncate(24 * time.Hour)
	dailySpent, err := s.usageRepo.DaySpend(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("parseService.Parse usage: %w", err)
	}

	in := port.ParseInput{
		Text:           req.Text,
		PageCount:      req.PageCount,
		ExpectedFormat: format,
	}
	run := parsing.RunConfig{
		Strategy:       strategy,
		ProviderOrder:  settings.ProviderOrder,
		Providers:      settings.Providers,
		EnableFallback: settings.EnableFallback,
		Limits: parsing.BudgetLimits{
			MaxCostPerDocument: settings.MaxCostPerDocument,
			DailyCostLimit:     settings.DailyCostLimit,
		},
		DailySpent: dailySpent,
	}

	outcome, err := s.orchestrator.ParseInvoice(ctx, in, run)
	if err != nil {
		return nil, err
	}

	// Bookkeeping failures must not undo a finished parse; log and move on.
	if err := s.usageRepo.AddSpend(ctx, userID, day, outcome.TotalCost); err != nil {
		log.Printf("parseService.Parse: recording spend: %v", err)
	}
	s.recordParse(ctx, userID, outcome)
	if settings.CollectTrainingData && outcome.Success && outcome.BestResult != nil {
		s.recordTrainingSample(ctx, userID, req.Text, outcome.BestResult)
	}

	return outcome, nil
}

func (s *parseService) Strategies() []string {
	return s.orchestrator.Strategies().Names()
}

func (s *parseService) recordParse(ctx context.Context, userID uuid.UUID, outcome *parsing.Outcome) {
	attempts, err := json.Marshal(outcome.Attempts)
	if err != nil {
		log.Printf("parseService.recordParse: marshaling attempts: %v", err)
		attempts = []byte("[]")
	}
	record := &domain.ParseRecord{
		UserID:       userID,
		Strategy:     outcome.Strategy,
		Success:      outcome.Success,
		BestEffort:   outcome.BestEffort,
		Confidence:   outcome.Confidence,
		TotalCost:    outcome.TotalCost,
		AttemptCount: len(outcome.Attempts),
		Attempts:     attempts,
	}
	if err := s.parseLogRepo.Create(ctx, record); err != nil {
		log.Printf("parseService.recordParse: %v", err)
	}
}

func (s *parseService) recordTrainingSample(ctx context.Context, userID uuid.UUID, text string, best *port.AttemptResult) {
	fields, err := json.Marshal(best.Fields)
	if err != nil {
		log.Printf("parseService.recordTrainingSample: marshaling fields: %v", err)
		return
	}
	sample := &domain.TrainingSample{
		UserID:     userID,
		ProviderID: best.ProviderID,
		Confidence: best.Confidence,
		SourceText: text,
		Fields:     fields,
	}
	if err := s.trainingRepo.Create(ctx, sample); err != nil {
		log.Printf("parseService.recordTrainingSample: %v", err)
	}
}

// defaultSettings builds parser settings from server configuration for users
// who have never saved their own.
func (s *parseService) defaultSettings(userID uuid.UUID) *domain.ParserSettings {
	return &domain.ParserSettings{
		UserID:          userID,
		DefaultStrategy: s.defaults.DefaultStrategy,
		Providers: map[string]domain.ProviderSettings{
			domain.ProviderClaude: {
				APIKey:  s.defaults.Claude.APIKey,
				Model:   s.defaults.Claude.Model,
				Enabled: s.defaults.Claude.Enabled,
			},
			domain.ProviderOpenAI: {
				APIKey:  s.defaults.OpenAI.APIKey,
				Model:   s.defaults.OpenAI.Model,
				Enabled: s.defaults.OpenAI.Enabled,
			},
			domain.ProviderGemini: {
				APIKey:  s.defaults.Gemini.APIKey,
				Model:   s.defaults.Gemini.Model,
				Enabled: s.defaults.Gemini.Enabled,
			},
			domain.ProviderHeuristic: {Enabled: true},
		},
		MaxCostPerDocument:  s.defaults.MaxCostPerDocument,
		DailyCostLimit:      s.defaults.DailyCostLimit,
		EnableFallback:      s.defaults.EnableFallback,
		CollectTrainingData: false,
	}
}
