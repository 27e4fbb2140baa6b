package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/openchain-academy/academy-backend/internal/content/store"
	"github.com/openchain-academy/academy-backend/internal/http/response"
	"github.com/openchain-academy/academy-backend/internal/services"
)

var errMissingKey = errors.New("query param 'key' is required")

// AdminHandler exposes content snapshot operations: manual reload and the
// warnings recorded during the last build.
type AdminHandler struct {
	store *store.Store
	svc   services.ContentService
}

func NewAdminHandler(st *store.Store, svc services.ContentService) *AdminHandler {
	return &AdminHandler{store: st, svc: svc}
}

// POST /admin/content/reload
func (h *AdminHandler) ReloadContent(c *gin.Context) {
	if err := h.store.Reload(c.Request.Context()); err != nil {
		response.RespondFromError(c, err)
		return
	}
	snap := h.store.Current()
	response.RespondOK(c, gin.H{"version": snap.Version, "built_at": snap.BuiltAt})
}

// GET /admin/content/warnings
func (h *AdminHandler) ContentWarnings(c *gin.Context) {
	response.RespondOK(c, gin.H{"warnings": h.svc.Warnings(c.Request.Context())})
}
