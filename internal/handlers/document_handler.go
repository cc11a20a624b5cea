package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"prospera/internal/models"
	"prospera/internal/services"
)

type DocumentHandler struct {
	service *services.DocumentService
}

func NewDocumentHandler(service *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// @Summary      Generate a document
// @Description  Renders a proposal or contract PDF for an opportunity.
// @Description  Proposals need a positive proposal value; contracts need a
// @Description  won opportunity in a contract-generating pipeline.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.Document
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /documents [post]
func (h *DocumentHandler) Generate(c *gin.Context) {
	var req struct {
		OpportunityID int64               `json:"opportunity_id" binding:"required"`
		Kind          models.DocumentKind `json:"kind" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := getUserAndRole(c)

	doc, err := h.service.GenerateDocument(c.Request.Context(), req.OpportunityID, req.Kind, int64(userID))
	if err != nil {
		writeError(c, err)
		return
	}
	log.Printf("[document][generate] id=%d kind=%s opportunity=%d by userID=%d", doc.ID, doc.Kind, doc.OpportunityID, userID)
	c.JSON(http.StatusCreated, doc)
}

// GET /documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	doc, err := h.service.GetDocument(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// GET /documents?limit=&offset=
func (h *DocumentHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	docs, err := h.service.ListDocuments(limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// GET /opportunities/:id/documents
func (h *DocumentHandler) ListByOpportunity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	docs, err := h.service.ListByOpportunity(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// GET /documents/:id/download
func (h *DocumentHandler) Download(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	absPath, fileName, err := h.service.ResolveFileForHTTP(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.FileAttachment(absPath, fileName)
}

// DELETE /documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteDocument(id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}
