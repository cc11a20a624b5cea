package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prospera/internal/models"
	"prospera/internal/services"
)

type ContactHandler struct {
	service *services.ContactService
}

func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// POST /contacts
func (h *ContactHandler) Create(c *gin.Context) {
	var contact models.Contact
	if err := c.ShouldBindJSON(&contact); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.Create(&contact); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// GET /contacts/:id
func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	contact, err := h.service.GetByID(id)
	if err != nil {
		writeError(c, err)
		return
	}
	if contact == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, contact)
}

// GET /contacts?name=&limit=&offset=
func (h *ContactHandler) List(c *gin.Context) {
	if name := c.Query("name"); name != "" {
		contacts, err := h.service.Search(name)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, contacts)
		return
	}
	limit, offset := pagination(c)
	contacts, err := h.service.List(limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// PUT /contacts/:id
func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var contact models.Contact
	if err := c.ShouldBindJSON(&contact); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contact.ID = id
	if err := h.service.Update(&contact); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// DELETE /contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "contact deleted"})
}
