package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/localbookr/marketplace-backend/internal/services"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "registration_failed")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "login_failed")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	resp, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err, "refresh_failed")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userCtx.UserID)
	if err != nil {
		respondError(c, err, "profile_retrieval_failed")
		return
	}

	c.JSON(http.StatusOK, user)
}
