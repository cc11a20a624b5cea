package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"prospera/internal/models"
	"prospera/internal/services"
)

type OpportunityHandler struct {
	service *services.OpportunityService
}

func NewOpportunityHandler(service *services.OpportunityService) *OpportunityHandler {
	return &OpportunityHandler{service: service}
}

// @Summary      Create an opportunity
// @Description  Opens an opportunity at the first stage of the given pipeline
// @Tags         Opportunities
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.Opportunity
// @Failure      400  {object}  map[string]string
// @Router       /opportunities [post]
func (h *OpportunityHandler) Create(c *gin.Context) {
	var req struct {
		ContactID     int64    `json:"contact_id" binding:"required"`
		FunnelID      int64    `json:"funnel_id" binding:"required"`
		OwnerID       int64    `json:"owner_id"`
		ProposalValue *float64 `json:"proposal_value"`
		Notes         string   `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := getUserAndRole(c)

	ownerID := req.OwnerID
	if ownerID == 0 {
		ownerID = int64(userID)
	}
	opp := &models.Opportunity{
		ContactID:       req.ContactID,
		OwnerID:         ownerID,
		CurrentFunnelID: req.FunnelID,
		ProposalValue:   req.ProposalValue,
		Notes:           req.Notes,
	}
	if err := h.service.Create(c.Request.Context(), opp, int64(userID)); err != nil {
		writeError(c, err)
		return
	}
	log.Printf("[opportunity][create] id=%d funnel=%d by userID=%d", opp.ID, opp.CurrentFunnelID, userID)
	c.JSON(http.StatusCreated, opp)
}

// @Summary      Get opportunity detail
// @Description  Returns the opportunity, its history and current SLA health
// @Tags         Opportunities
// @Produce      json
// @Param        id   path      int  true  "Opportunity ID"
// @Success      200  {object}  services.Detail
// @Failure      404  {object}  map[string]string
// @Router       /opportunities/{id} [get]
func (h *OpportunityHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	detail, err := h.service.GetDetail(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GET /opportunities?funnel_id=&stage_id=&owner_id=&status=&limit=&offset=
func (h *OpportunityHandler) List(c *gin.Context) {
	var filter models.OpportunityFilter
	if v := c.Query("funnel_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.FunnelID = &id
		}
	}
	if v := c.Query("stage_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.StageID = &id
		}
	}
	if v := c.Query("owner_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.OwnerID = &id
		}
	}
	if v := c.Query("status"); v != "" {
		status := models.OpportunityStatus(v)
		switch status {
		case models.OpportunityActive, models.OpportunityWon, models.OpportunityLost:
			filter.Status = &status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}
	limit, offset := pagination(c)

	opps, err := h.service.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, opps)
}

// GET /opportunities/:id/history
func (h *OpportunityHandler) History(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	entries, err := h.service.History(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// @Summary      Check a stage move
// @Description  Dry-run validation of a stage transition, no side effects
// @Tags         Opportunities
// @Produce      json
// @Param        id        path      int  true  "Opportunity ID"
// @Param        stage_id  query     int  true  "Target stage"
// @Success      200       {object}  pipeline.TransitionResult
// @Router       /opportunities/{id}/check-move [get]
func (h *OpportunityHandler) CheckMove(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	stageID, err := strconv.ParseInt(c.Query("stage_id"), 10, 64)
	if err != nil || stageID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stage_id"})
		return
	}
	result, err := h.service.CheckMove(c.Request.Context(), id, stageID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary      Move an opportunity to another stage
// @Description  Applies a validated stage transition. The client sends the
// @Description  stage it believes the opportunity is in; a mismatch means a
// @Description  concurrent move won and the request is rejected with 409.
// @Tags         Opportunities
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "Opportunity ID"
// @Success      200  {object}  models.Opportunity
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]interface{}
// @Router       /opportunities/{id}/move [post]
func (h *OpportunityHandler) Move(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		FromStageID   int64    `json:"from_stage_id" binding:"required"`
		ToStageID     int64    `json:"to_stage_id" binding:"required"`
		ProposalValue *float64 `json:"proposal_value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := getUserAndRole(c)

	opp, err := h.service.Move(c.Request.Context(), id, req.FromStageID, req.ToStageID, req.ProposalValue, int64(userID))
	if err != nil {
		writeError(c, err)
		return
	}
	log.Printf("[opportunity][move] id=%d %d->%d by userID=%d", id, req.FromStageID, req.ToStageID, userID)
	c.JSON(http.StatusOK, opp)
}

// PUT /opportunities/:id/value
func (h *OpportunityHandler) SetProposalValue(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		ProposalValue *float64 `json:"proposal_value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opp, err := h.service.SetProposalValue(c.Request.Context(), id, req.ProposalValue)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, opp)
}

// PUT /opportunities/:id/notes
func (h *OpportunityHandler) SetNotes(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opp, err := h.service.SetNotes(c.Request.Context(), id, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, opp)
}

// @Summary      Mark an opportunity lost
// @Tags         Opportunities
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "Opportunity ID"
// @Success      200  {object}  models.Opportunity
// @Failure      409  {object}  map[string]string
// @Router       /opportunities/{id}/lost [post]
func (h *OpportunityHandler) MarkLost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		ReasonID int64  `json:"reason_id" binding:"required"`
		Notes    string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := getUserAndRole(c)

	opp, err := h.service.MarkLost(c.Request.Context(), id, req.ReasonID, req.Notes, int64(userID))
	if err != nil {
		writeError(c, err)
		return
	}
	log.Printf("[opportunity][lost] id=%d reason=%d by userID=%d", id, req.ReasonID, userID)
	c.JSON(http.StatusOK, opp)
}

// @Summary      Mark an opportunity won
// @Description  Closes the opportunity as won. When the pipeline chains into
// @Description  a follow-up pipeline, a new opportunity is opened there in
// @Description  the same transaction and returned as "cascade".
// @Tags         Opportunities
// @Produce      json
// @Param        id  path  int  true  "Opportunity ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]string
// @Router       /opportunities/{id}/won [post]
func (h *OpportunityHandler) MarkWon(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, _ := getUserAndRole(c)

	won, cascade, err := h.service.MarkWon(c.Request.Context(), id, int64(userID))
	if err != nil {
		writeError(c, err)
		return
	}
	log.Printf("[opportunity][won] id=%d cascade=%v by userID=%d", id, cascade != nil, userID)
	resp := gin.H{"opportunity": won}
	if cascade != nil {
		resp["cascade"] = cascade
	}
	c.JSON(http.StatusOK, resp)
}

// POST /opportunities/:id/reactivate
func (h *OpportunityHandler) Reactivate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		StageID *int64 `json:"stage_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := getUserAndRole(c)

	opp, err := h.service.Reactivate(c.Request.Context(), id, req.StageID, int64(userID))
	if err != nil {
		writeError(c, err)
		return
	}
	log.Printf("[opportunity][reactivate] id=%d by userID=%d", id, userID)
	c.JSON(http.StatusOK, opp)
}
