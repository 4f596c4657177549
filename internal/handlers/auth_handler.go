package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/apierr"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/models"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/services"
)

// AuthHandler handles admin authentication endpoints
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login checks credentials and returns a token
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.InvalidRequest("missing login credentials: %v", err))
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
