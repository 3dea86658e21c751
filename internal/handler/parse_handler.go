package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"siteledger/internal/service"
)

// ParseHandler handles invoice parsing endpoints.
type ParseHandler struct {
	parseService service.ParseService
}

// NewParseHandler creates a new ParseHandler.
func NewParseHandler(parseService service.ParseService) *ParseHandler {
	return &ParseHandler{parseService: parseService}
}

// Parse handles POST /api/v1/invoices/parse
func (h *ParseHandler) Parse(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req service.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		return
	}

	outcome, err := h.parseService.Parse(c.Request.Context(), userID, &req)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, outcome)
}

// ListStrategies handles GET /api/v1/strategies
func (h *ParseHandler) ListStrategies(c *gin.Context) {
	RespondOK(c, gin.H{"strategies": h.parseService.Strategies()})
}
