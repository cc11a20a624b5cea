package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prospera/internal/models"
	"prospera/internal/services"
)

type FunnelHandler struct {
	service       *services.FunnelService
	opportunities *services.OpportunityService
}

func NewFunnelHandler(service *services.FunnelService, opportunities *services.OpportunityService) *FunnelHandler {
	return &FunnelHandler{service: service, opportunities: opportunities}
}

// @Summary      Create a pipeline
// @Description  Creates a funnel together with its ordered stages
// @Tags         Funnels
// @Accept       json
// @Produce      json
// @Param        funnel  body      models.Funnel  true  "Funnel with stages"
// @Success      201     {object}  models.Funnel
// @Failure      400     {object}  map[string]string
// @Router       /funnels [post]
func (h *FunnelHandler) Create(c *gin.Context) {
	var funnel models.Funnel
	if err := c.ShouldBindJSON(&funnel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.Create(c.Request.Context(), &funnel); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, funnel)
}

// GET /funnels
func (h *FunnelHandler) List(c *gin.Context) {
	funnels, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, funnels)
}

// GET /funnels/:id
func (h *FunnelHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	funnel, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, funnel)
}

// GET /funnels/:id/stages
func (h *FunnelHandler) Stages(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	stages, err := h.service.GetStages(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stages)
}

// POST /funnels/:id/stages
func (h *FunnelHandler) AddStage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var stage models.FunnelStage
	if err := c.ShouldBindJSON(&stage); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stage.FunnelID = id
	if err := h.service.AddStage(c.Request.Context(), &stage); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stage)
}

// PUT /funnels/:id/stages/order
func (h *FunnelHandler) ReorderStages(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		StageIDs []int64 `json:"stage_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.Reorder(c.Request.Context(), id, req.StageIDs); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "stages reordered"})
}

// @Summary      Pipeline board
// @Description  Kanban view: one column per stage, cards with SLA health
// @Tags         Funnels
// @Produce      json
// @Param        id   path      int  true  "Funnel ID"
// @Success      200  {array}   services.BoardColumn
// @Failure      404  {object}  map[string]string
// @Router       /funnels/{id}/board [get]
func (h *FunnelHandler) Board(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	columns, err := h.opportunities.Board(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, columns)
}
