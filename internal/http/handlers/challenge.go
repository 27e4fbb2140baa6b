package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/openchain-academy/academy-backend/internal/http/response"
	"github.com/openchain-academy/academy-backend/internal/services"
)

type ChallengeHandler struct {
	svc services.ContentService
}

func NewChallengeHandler(svc services.ContentService) *ChallengeHandler {
	return &ChallengeHandler{svc: svc}
}

// GET /api/challenges
func (h *ChallengeHandler) ListChallenges(c *gin.Context) {
	challenges, err := h.svc.ListChallenges(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"challenges": challenges})
}

// GET /api/challenges/:id
func (h *ChallengeHandler) GetChallenge(c *gin.Context) {
	challenge, err := h.svc.GetChallenge(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"challenge": challenge})
}
