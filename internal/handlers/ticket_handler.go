package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"prospera/internal/authz"
	"prospera/internal/models"
	"prospera/internal/services"
)

type TicketHandler struct {
	service services.TicketService
}

func NewTicketHandler(service services.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

// POST /tickets
func (h *TicketHandler) Create(c *gin.Context) {
	var req struct {
		AssigneeID    int64                 `json:"assignee_id" binding:"required"`
		ContactID     *int64                `json:"contact_id"`
		OpportunityID *int64                `json:"opportunity_id"`
		Subject       string                `json:"subject" binding:"required"`
		Body          string                `json:"body"`
		DueDate       string                `json:"due_date"` // RFC3339
		Priority      models.TicketPriority `json:"priority"` // low|normal|high|urgent
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, roleID := getUserAndRole(c)
	uid := int64(userID)

	if roleID == authz.RolePlanner && req.AssigneeID != uid {
		c.JSON(http.StatusForbidden, gin.H{"error": "planners can assign only to self"})
		return
	}

	var due *time.Time
	if req.DueDate != "" {
		t, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date (RFC3339)"})
			return
		}
		due = &t
	}

	ticket := &models.Ticket{
		CreatorID:     uid,
		AssigneeID:    req.AssigneeID,
		ContactID:     req.ContactID,
		OpportunityID: req.OpportunityID,
		Subject:       req.Subject,
		Body:          req.Body,
		DueDate:       due,
		Priority:      req.Priority,
	}
	created, err := h.service.Create(c.Request.Context(), ticket)
	if err != nil {
		writeError(c, err)
		return
	}
	log.Printf("[ticket][create] id=%d assignee=%d by userID=%d", created.ID, created.AssigneeID, userID)
	c.JSON(http.StatusCreated, created)
}

// GET /tickets/:id
func (h *TicketHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ticket, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// GET /tickets?assignee_id=&creator_id=&contact_id=&opportunity_id=&status=
func (h *TicketHandler) List(c *gin.Context) {
	var filter models.TicketFilter
	if v := c.Query("assignee_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.AssigneeID = &id
		}
	}
	if v := c.Query("creator_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.CreatorID = &id
		}
	}
	if v := c.Query("contact_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.ContactID = &id
		}
	}
	if v := c.Query("opportunity_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.OpportunityID = &id
		}
	}
	if v := c.Query("status"); v != "" {
		status := models.TicketStatus(v)
		filter.Status = &status
	}

	tickets, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// PUT /tickets/:id
func (h *TicketHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var update models.Ticket
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ticket, err := h.service.Update(c.Request.Context(), id, &update)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// PUT /tickets/:id/status
func (h *TicketHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status models.TicketStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ticket, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// PUT /tickets/:id/assignee
func (h *TicketHandler) UpdateAssignee(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		AssigneeID int64 `json:"assignee_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ticket, err := h.service.UpdateAssignee(c.Request.Context(), id, req.AssigneeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// DELETE /tickets/:id
func (h *TicketHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ticket deleted"})
}
