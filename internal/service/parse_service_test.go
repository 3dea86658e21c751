package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"siteledger/internal/config"
	"siteledger/internal/domain"
	"siteledger/internal/parsing"
	"siteledger/internal/port"
	"siteledger/internal/service"
	"siteledger/mocks"
)

type parseServiceFixture struct {
	svc          service.ParseService
	claude       *mocks.MockInvoiceProvider
	settingsRepo *mocks.MockSettingsRepo
	usageRepo    *mocks.MockUsageRepo
	parseLogRepo *mocks.MockParseLogRepo
	trainingRepo *mocks.MockTrainingRepo
}

func newParseServiceFixture() *parseServiceFixture {
	claude := new(mocks.MockInvoiceProvider)
	claude.On("EstimateCost", mock.Anything).Return(0.01).Maybe()

	reg := parsing.NewProviderRegistry()
	reg.Register(domain.ProviderClaude, func(domain.ProviderSettings) (port.InvoiceProvider, error) {
		return claude, nil
	})

	orch := parsing.NewOrchestrator(parsing.NewStrategyRegistry(), reg, parsing.Thresholds{Accept: 0.70, UsableFloor: 0.60})

	f := &parseServiceFixture{
		claude:       claude,
		settingsRepo: new(mocks.MockSettingsRepo),
		usageRepo:    new(mocks.MockUsageRepo),
		parseLogRepo: new(mocks.MockParseLogRepo),
		trainingRepo: new(mocks.MockTrainingRepo),
	}
	defaults := config.ParsingConfig{
		DefaultStrategy:    parsing.StrategyAccuracyOptimized,
		AcceptThreshold:    0.70,
		UsableFloor:        0.60,
		MaxCostPerDocument: 0.50,
		DailyCostLimit:     25.0,
		EnableFallback:     true,
		Claude:             config.ProviderConfig{APIKey: "default-key", Enabled: true},
	}
	f.svc = service.NewParseService(orch, f.settingsRepo, f.usageRepo, f.parseLogRepo, f.trainingRepo, defaults)
	return f
}

func claudeOnlySettings(userID uuid.UUID) *domain.ParserSettings {
	return &domain.ParserSettings{
		UserID:          userID,
		DefaultStrategy: parsing.StrategyAccuracyOptimized,
		Providers: map[string]domain.ProviderSettings{
			domain.ProviderClaude: {APIKey: "user-key", Enabled: true},
		},
		MaxCostPerDocument: 0.50,
		DailyCostLimit:     25.0,
		EnableFallback:     true,
	}
}

func parseReq() *service.ParseRequest {
	return &service.ParseRequest{Text: "ACME\nInvoice #: 100\nTotal: $500.00", PageCount: 1}
}

func claudeSuccess(confidence, cost float64) *port.AttemptResult {
	return &port.AttemptResult{
		ProviderID: domain.ProviderClaude,
		Success:    true,
		Confidence: confidence,
		Fields:     &domain.InvoiceFields{InvoiceNumber: "100"},
		Cost:       cost,
	}
}

func TestParseService_Parse_RecordsSpendAndLog(t *testing.T) {
	f := newParseServiceFixture()
	userID := uuid.New()

	f.settingsRepo.On("GetByUser", mock.Anything, userID).Return(claudeOnlySettings(userID), nil)
	f.usageRepo.On("DaySpend", mock.Anything, userID, mock.Anything).Return(0.0, nil)
	f.claude.On("Parse", mock.Anything, mock.Anything).Return(claudeSuccess(0.90, 0.01), nil)
	f.usageRepo.On("AddSpend", mock.Anything, userID, mock.Anything, 0.01).Return(nil)
	f.parseLogRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.ParseRecord) bool {
		return r.UserID == userID && r.Success && r.AttemptCount == 1
	})).Return(nil)

	outcome, err := f.svc.Parse(context.Background(), userID, parseReq())

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.InDelta(t, 0.01, outcome.TotalCost, 1e-9)
	f.usageRepo.AssertExpectations(t)
	f.parseLogRepo.AssertExpectations(t)
	f.trainingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestParseService_Parse_DefaultsWhenNoSettings(t *testing.T) {
	f := newParseServiceFixture()
	userID := uuid.New()

	f.settingsRepo.On("GetByUser", mock.Anything, userID).Return(nil, domain.ErrNotFound)
	f.usageRepo.On("DaySpend", mock.Anything, userID, mock.Anything).Return(0.0, nil)
	f.claude.On("Parse", mock.Anything, mock.Anything).Return(claudeSuccess(0.85, 0.02), nil)
	f.usageRepo.On("AddSpend", mock.Anything, userID, mock.Anything, 0.02).Return(nil)
	f.parseLogRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	outcome, err := f.svc.Parse(context.Background(), userID, parseReq())

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, parsing.StrategyAccuracyOptimized, outcome.Strategy)
}

func TestParseService_Parse_UnknownStrategyOverride(t *testing.T) {
	f := newParseServiceFixture()
	userID := uuid.New()

	f.settingsRepo.On("GetByUser", mock.Anything, userID).Return(claudeOnlySettings(userID), nil)
	f.usageRepo.On("DaySpend", mock.Anything, userID, mock.Anything).Return(0.0, nil)

	req := parseReq()
	req.StrategyOverride = "fastest"
	outcome, err := f.svc.Parse(context.Background(), userID, req)

	assert.Nil(t, outcome)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownStrategy))
	f.usageRepo.AssertNotCalled(t, "AddSpend", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestParseService_Parse_UnknownExpectedFormat(t *testing.T) {
	f := newParseServiceFixture()

	req := parseReq()
	req.ExpectedFormat = "napkin_sketch"
	outcome, err := f.svc.Parse(context.Background(), uuid.New(), req)

	assert.Nil(t, outcome)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	f.settingsRepo.AssertNotCalled(t, "GetByUser", mock.Anything, mock.Anything)
}

func TestParseService_Parse_RecordsTrainingSampleWhenOptedIn(t *testing.T) {
	f := newParseServiceFixture()
	userID := uuid.New()

	settings := claudeOnlySettings(userID)
	settings.CollectTrainingData = true
	f.settingsRepo.On("GetByUser", mock.Anything, userID).Return(settings, nil)
	f.usageRepo.On("DaySpend", mock.Anything, userID, mock.Anything).Return(0.0, nil)
	f.claude.On("Parse", mock.Anything, mock.Anything).Return(claudeSuccess(0.92, 0.01), nil)
	f.usageRepo.On("AddSpend", mock.Anything, userID, mock.Anything, mock.Anything).Return(nil)
	f.parseLogRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.trainingRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.TrainingSample) bool {
		return s.UserID == userID && s.ProviderID == domain.ProviderClaude
	})).Return(nil)

	_, err := f.svc.Parse(context.Background(), userID, parseReq())

	require.NoError(t, err)
	f.trainingRepo.AssertExpectations(t)
}

func TestParseService_Parse_BookkeepingFailuresDoNotFailParse(t *testing.T) {
	f := newParseServiceFixture()
	userID := uuid.New()

	f.settingsRepo.On("GetByUser", mock.Anything, userID).Return(claudeOnlySettings(userID), nil)
	f.usageRepo.On("DaySpend", mock.Anything, userID, mock.Anything).Return(0.0, nil)
	f.claude.On("Parse", mock.Anything, mock.Anything).Return(claudeSuccess(0.90, 0.01), nil)
	f.usageRepo.On("AddSpend", mock.Anything, userID, mock.Anything, mock.Anything).Return(errors.New("db down"))
	f.parseLogRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	outcome, err := f.svc.Parse(context.Background(), userID, parseReq())

	require.NoError(t, err)
	assert.True(t, outcome.Success)
}

func TestParseService_Strategies(t *testing.T) {
	f := newParseServiceFixture()

	names := f.svc.Strategies()

	assert.Len(t, names, 5)
	assert.Contains(t, names, parsing.StrategyLLMPrimary)
}
