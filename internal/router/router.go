package router

import (
	"github.com/gin-gonic/gin"

	"siteledger/internal/handler"
	"siteledger/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	parseH *handler.ParseHandler,
	settingsH *handler.SettingsHandler,
	usageH *handler.UsageHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// Protected routes - identity comes from the gateway header
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Identity())

	v1.POST("/invoices/parse", parseH.Parse)
	v1.GET("/strategies", parseH.ListStrategies)

	v1.GET("/settings/parsing", settingsH.Get)
	v1.PUT("/settings/parsing", settingsH.Update)

	v1.GET("/usage/daily", usageH.Daily)
	v1.GET("/usage/report", usageH.Report)
	v1.GET("/parses", usageH.Parses)

	return r
}
