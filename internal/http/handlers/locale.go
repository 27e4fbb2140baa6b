package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openchain-academy/academy-backend/internal/http/response"
	"github.com/openchain-academy/academy-backend/internal/services"
)

type LocaleHandler struct {
	svc services.ContentService
}

func NewLocaleHandler(svc services.ContentService) *LocaleHandler {
	return &LocaleHandler{svc: svc}
}

// GET /api/locales/:locale/strings
func (h *LocaleHandler) GetTable(c *gin.Context) {
	table, err := h.svc.LocaleTable(c.Request.Context(), c.Param("locale"))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"strings": table})
}

// GET /api/locales/:locale/strings/resolve?key=nav.challenges.title
func (h *LocaleHandler) ResolveString(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", errMissingKey)
		return
	}
	value, err := h.svc.ResolveString(c.Request.Context(), key, c.Param("locale"))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"key": key, "value": value})
}
