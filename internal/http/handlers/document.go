package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/openchain-academy/academy-backend/internal/http/response"
	"github.com/openchain-academy/academy-backend/internal/services"
)

type DocumentHandler struct {
	svc services.ContentService
}

func NewDocumentHandler(svc services.ContentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// GET /api/locales/:locale/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	locale := c.Param("locale")
	ids, err := h.svc.ListDocuments(c.Request.Context(), locale)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"documents": ids})
}

// GET /api/locales/:locale/documents/*id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	locale := c.Param("locale")
	id := trimWildcard(c.Param("id"))
	doc, err := h.svc.GetDocument(c.Request.Context(), locale, id)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"document": doc})
}

// Wildcard params keep their leading slash.
func trimWildcard(p string) string {
	if len(p) > 0 && p[0] == '/' {
		return p[1:]
	}
	return p
}
