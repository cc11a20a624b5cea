package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"prospera/internal/services"
)

type ReportsHandler struct {
	service *services.ReportService
}

func NewReportsHandler(service *services.ReportService) *ReportsHandler {
	return &ReportsHandler{service: service}
}

// @Summary      Pipeline summary
// @Description  Per-stage counts, totals and SLA health for a funnel
// @Tags         Reports
// @Produce      json
// @Param        id   path      int  true  "Funnel ID"
// @Success      200  {object}  services.PipelineSummary
// @Failure      404  {object}  map[string]string
// @Router       /reports/pipeline/{id} [get]
func (h *ReportsHandler) PipelineSummary(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	summary, err := h.service.PipelineSummary(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GET /reports/win-loss?from=2026-01-01&to=2026-02-01
func (h *ReportsHandler) WinLoss(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from (YYYY-MM-DD)"})
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to (YYYY-MM-DD)"})
		return
	}
	rows, err := h.service.WinLoss(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
