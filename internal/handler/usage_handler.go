package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"siteledger/internal/report"
	"siteledger/internal/service"
)

// UsageHandler handles usage and parse history endpoints.
type UsageHandler struct {
	usageService service.UsageService
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(usageService service.UsageService) *UsageHandler {
	return &UsageHandler{usageService: usageService}
}

// Daily handles GET /api/v1/usage/daily
func (h *UsageHandler) Daily(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	day := time.Now().UTC()
	if raw := c.Query("day"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "day must be formatted YYYY-MM-DD")
			return
		}
		day = parsed
	}

	entry, err := h.usageService.Daily(c.Request.Context(), userID, day)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, entry)
}

// Report handles GET /api/v1/usage/report
// Streams an xlsx workbook covering the requested date range.
func (h *UsageHandler) Report(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	from, to, err := parseRange(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	entries, err := h.usageService.Range(c.Request.Context(), userID, from, to)
	if err != nil {
		HandleError(c, err)
		return
	}

	buf, err := report.UsageWorkbook(entries)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("usage_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// Parses handles GET /api/v1/parses
func (h *UsageHandler) Parses(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	records, total, err := h.usageService.Parses(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, records, PagMeta{Total: total, Offset: offset, Limit: limit})
}

func parseRange(c *gin.Context) (from, to time.Time, err error) {
	to = time.Now().UTC()
	from = to.AddDate(0, 0, -30)

	if raw := c.Query("from"); raw != "" {
		from, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, fmt.Errorf("from must be formatted YYYY-MM-DD")
		}
	}
	if raw := c.Query("to"); raw != "" {
		to, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, fmt.Errorf("to must be formatted YYYY-MM-DD")
		}
	}
	return from, to, nil
}
