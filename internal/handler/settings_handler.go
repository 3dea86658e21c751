package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"siteledger/internal/domain"
	"siteledger/internal/service"
)

// SettingsHandler handles parser settings endpoints.
type SettingsHandler struct {
	settingsService service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get handles GET /api/v1/settings/parsing
func (h *SettingsHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.Get(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, redactSettings(settings))
}

// Update handles PUT /api/v1/settings/parsing
func (h *SettingsHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var settings domain.ParserSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		return
	}
	settings.UserID = userID

	if err := h.settingsService.Update(c.Request.Context(), &settings); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, redactSettings(&settings))
}

// redactSettings masks stored API keys. Keys go in through Update but never
// come back out in full.
func redactSettings(settings *domain.ParserSettings) *domain.ParserSettings {
	out := *settings
	out.Providers = make(map[string]domain.ProviderSettings, len(settings.Providers))
	for id, p := range settings.Providers {
		if p.APIKey != "" {
			p.APIKey = "********"
		}
		out.Providers[id] = p
	}
	return &out
}
