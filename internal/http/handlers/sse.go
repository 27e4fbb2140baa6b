package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openchain-academy/academy-backend/internal/logger"
	"github.com/openchain-academy/academy-backend/internal/requestdata"
	"github.com/openchain-academy/academy-backend/internal/sse"
)

type SSEHandler struct {
	log *logger.Logger
	hub *sse.SSEHub
}

func NewSSEHandler(log *logger.Logger, hub *sse.SSEHub) *SSEHandler {
	return &SSEHandler{log: log.With("handler", "SSEHandler"), hub: hub}
}

// GET /sse/stream
//
// Streams the caller's own progress events. The client is subscribed to its
// per-user channel for the lifetime of the connection.
func (h *SSEHandler) Stream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	client := h.hub.NewSSEClient(rd.UserID)
	h.hub.AddChannel(client, sse.UserChannel(rd.UserID))
	defer h.hub.RemoveClient(client)

	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
