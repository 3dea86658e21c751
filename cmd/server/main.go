package main

import (
	"fmt"
	"log"
	"time"

	"siteledger/internal/config"
	"siteledger/internal/domain"
	"siteledger/internal/handler"
	"siteledger/internal/parsing"
	"siteledger/internal/parsing/provider/claude"
	"siteledger/internal/parsing/provider/gemini"
	"siteledger/internal/parsing/provider/heuristic"
	"siteledger/internal/parsing/provider/openai"
	"siteledger/internal/port"
	"siteledger/internal/repository/postgres"
	"siteledger/internal/router"
	"siteledger/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	settingsRepo := postgres.NewSettingsRepo(db)
	usageRepo := postgres.NewUsageRepo(db)
	parseLogRepo := postgres.NewParseLogRepo(db)
	trainingRepo := postgres.NewTrainingRepo(db)

	// Initialize the parsing core
	scorer := parsing.DefaultScorer()
	providers := parsing.NewProviderRegistry()
	providers.Register(domain.ProviderClaude, providerFactory(cfg.Parsing.Claude.TimeoutSecs,
		func(p domain.ProviderSettings, t time.Duration) port.InvoiceProvider { return claude.New(p, t, scorer) }))
	providers.Register(domain.ProviderOpenAI, providerFactory(cfg.Parsing.OpenAI.TimeoutSecs,
		func(p domain.ProviderSettings, t time.Duration) port.InvoiceProvider { return openai.New(p, t, scorer) }))
	providers.Register(domain.ProviderGemini, providerFactory(cfg.Parsing.Gemini.TimeoutSecs,
		func(p domain.ProviderSettings, t time.Duration) port.InvoiceProvider { return gemini.New(p, t, scorer) }))
	providers.Register(domain.ProviderHeuristic, func(domain.ProviderSettings) (port.InvoiceProvider, error) {
		return heuristic.New(scorer), nil
	})

	strategies := parsing.NewStrategyRegistry()
	orchestrator := parsing.NewOrchestrator(strategies, providers, parsing.Thresholds{
		Accept:      cfg.Parsing.AcceptThreshold,
		UsableFloor: cfg.Parsing.UsableFloor,
	})

	// Initialize services
	parseSvc := service.NewParseService(orchestrator, settingsRepo, usageRepo, parseLogRepo, trainingRepo, cfg.Parsing)
	settingsSvc := service.NewSettingsService(settingsRepo, strategies)
	usageSvc := service.NewUsageService(usageRepo, parseLogRepo)

	// Initialize handlers
	parseH := handler.NewParseHandler(parseSvc)
	settingsH := handler.NewSettingsHandler(settingsSvc)
	usageH := handler.NewUsageHandler(usageSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, parseH, settingsH, usageH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func providerFactory(timeoutSecs int, build func(domain.ProviderSettings, time.Duration) port.InvoiceProvider) parsing.ProviderFactory {
	timeout := time.Duration(timeoutSecs) * time.Second
	return func(p domain.ProviderSettings) (port.InvoiceProvider, error) {
		return build(p, timeout), nil
	}
}
