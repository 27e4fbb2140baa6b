package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openchain-academy/academy-backend/internal/http/response"
	"github.com/openchain-academy/academy-backend/internal/services"
	"github.com/openchain-academy/academy-backend/internal/types"
)

type AuthHandler struct {
	svc services.AuthService
}

func NewAuthHandler(svc services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type registerRequest struct {
	Email         string `json:"email" binding:"required"`
	Password      string `json:"password" binding:"required"`
	DisplayName   string `json:"display_name"`
	WalletAddress string `json:"wallet_address"`
}

// POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	user := &types.User{
		Email:         req.Email,
		Password:      req.Password,
		DisplayName:   req.DisplayName,
		WalletAddress: req.WalletAddress,
	}
	if err := h.svc.RegisterUser(c.Request.Context(), user); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	accessToken, refreshToken, err := h.svc.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int(h.svc.GetAccessTTL().Seconds()),
	})
}

// POST /refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	accessToken, refreshToken, err := h.svc.RefreshUser(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int(h.svc.GetAccessTTL().Seconds()),
	})
}

// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.LogoutUser(c.Request.Context()); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "logged out"})
}
