package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openchain-academy/academy-backend/internal/http/response"
	"github.com/openchain-academy/academy-backend/internal/requestdata"
	"github.com/openchain-academy/academy-backend/internal/services"
)

type ProgressHandler struct {
	svc services.ProgressService
}

func NewProgressHandler(svc services.ProgressService) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	return rd.UserID, true
}

// GET /progress
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	progress, err := h.svc.GetProgress(c.Request.Context(), userID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": progress})
}

type markCompleteRequest struct {
	DocumentID string `json:"document_id" binding:"required"`
}

// POST /progress/complete
func (h *ProgressHandler) MarkComplete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req markCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	if err := h.svc.MarkComplete(c.Request.Context(), userID, req.DocumentID); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"document_id": req.DocumentID, "status": "complete"})
}

type claimRequest struct {
	ChallengeID string `json:"challenge_id" binding:"required"`
}

// POST /progress/claim
func (h *ProgressHandler) Claim(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	claim, err := h.svc.Claim(c.Request.Context(), userID, req.ChallengeID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"claim": claim})
}
