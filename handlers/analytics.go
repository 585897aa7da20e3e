package handlers

import (
	"net/http"
	"time"

	"taskhive/services/analytics"
	"taskhive/utils"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves stored snapshots and the dashboard.
type AnalyticsHandler struct {
	Svc analytics.AnalyticsService
}

func NewAnalyticsHandler(svc analytics.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Svc: svc}
}

func (h *AnalyticsHandler) GetAnalyticsHandler(c *gin.Context) {
	start, ok := dateParam(c, "startDate")
	if !ok {
		return
	}
	end, ok := dateParam(c, "endDate")
	if !ok {
		return
	}
	docs, err := h.Svc.Range(c.Request.Context(), start, end)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *AnalyticsHandler) DashboardHandler(c *gin.Context) {
	summary, err := h.Svc.Dashboard(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AnalyticsHandler) RollupHandler(c *gin.Context) {
	doc, err := h.Svc.RollupNow(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// dateParam parses an optional YYYY-MM-DD or RFC 3339 query parameter.
// Plain dates are read as local midnight.
func dateParam(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return &t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	utils.RespondError(c, utils.Validation("invalid date", map[string]any{key: raw}))
	return nil, false
}
