package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/apierr"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/services"
)

// SessionHandler handles quiz session tracking endpoints
type SessionHandler struct {
	sessionService services.SessionService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessionService services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Create starts a session
func (h *SessionHandler) Create(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apierr.Respond(c, apierr.InvalidRequest("missing session data: %v", err))
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), body.Email)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": session.ID.Hex()})
}

// Update finishes a session
func (h *SessionHandler) Update(c *gin.Context) {
	var body struct {
		ID         string `json:"id" binding:"required"`
		Downloaded bool   `json:"downloaded"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apierr.Respond(c, apierr.InvalidRequest("missing session data: %v", err))
		return
	}

	if err := h.sessionService.Finish(c.Request.Context(), body.ID, body.Downloaded); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Status(http.StatusOK)
}
