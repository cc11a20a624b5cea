package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"prospera/internal/models"
	"prospera/internal/repositories"
)

// LostReasonHandler manages the loss-reason catalog. Reasons are never
// deleted, only deactivated, so historical opportunities keep their label.
type LostReasonHandler struct {
	repo *repositories.LostReasonRepository
}

func NewLostReasonHandler(repo *repositories.LostReasonRepository) *LostReasonHandler {
	return &LostReasonHandler{repo: repo}
}

// POST /lost-reasons
func (h *LostReasonHandler) Create(c *gin.Context) {
	var reason models.LostReason
	if err := c.ShouldBindJSON(&reason); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(reason.Label) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "label is required"})
		return
	}
	reason.Active = true
	id, err := h.repo.Create(&reason)
	if err != nil {
		writeError(c, err)
		return
	}
	reason.ID = id
	c.JSON(http.StatusCreated, reason)
}

// GET /lost-reasons?all=true
func (h *LostReasonHandler) List(c *gin.Context) {
	activeOnly := c.Query("all") != "true"
	reasons, err := h.repo.List(activeOnly)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reasons)
}

// PUT /lost-reasons/:id/active
func (h *LostReasonHandler) SetActive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.repo.SetActive(id, *req.Active); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "lost reason updated"})
}
