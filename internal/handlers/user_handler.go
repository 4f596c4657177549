package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/apierr"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/models"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/services"
)

// UserHandler handles user endpoints
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register creates a user record
func (h *UserHandler) Register(c *gin.Context) {
	var body struct {
		Email     string `json:"email" binding:"required,email"`
		Source    string `json:"source" binding:"required,oneof=ios web"`
		Marketing *bool  `json:"marketing" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apierr.Respond(c, apierr.InvalidRequest("missing or invalid user data: %v", err))
		return
	}

	user, err := h.userService.Register(c.Request.Context(),
		body.Email, models.UserSource(body.Source), *body.Marketing)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetByEmail looks a user up by the email query parameter
func (h *UserHandler) GetByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		apierr.Respond(c, apierr.InvalidRequest("an email query parameter is required"))
		return
	}

	user, err := h.userService.GetByEmail(c.Request.Context(), email)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetAll lists every user
func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.userService.GetAll(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// MarketingEmails lists emails of users who consented to marketing
func (h *UserHandler) MarketingEmails(c *gin.Context) {
	emails, err := h.userService.MarketingEmails(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"emailList": emails})
}

// Delete removes a user
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Status(http.StatusOK)
}
