package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/apierr"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/models"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/services"
)

// ToSHandler handles terms-of-service endpoints
type ToSHandler struct {
	tosService services.ToSService
}

// NewToSHandler creates a new ToSHandler
func NewToSHandler(tosService services.ToSService) *ToSHandler {
	return &ToSHandler{tosService: tosService}
}

// Get returns the terms-of-service document for a platform
func (h *ToSHandler) Get(c *gin.Context) {
	platform := models.ToSPlatform(c.Param("platform"))

	tos, err := h.tosService.Get(c.Request.Context(), platform)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, tos)
}

// Update writes a platform's terms-of-service document
func (h *ToSHandler) Update(c *gin.Context) {
	var body struct {
		Platform string `json:"platform" binding:"required"`
		Link     string `json:"link" binding:"required,url"`
		Version  string `json:"version" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apierr.Respond(c, apierr.InvalidRequest("missing terms of service data: %v", err))
		return
	}

	tos := &models.ToS{
		Platform: models.ToSPlatform(body.Platform),
		Link:     body.Link,
		Version:  body.Version,
	}
	if err := h.tosService.Update(c.Request.Context(), tos); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Status(http.StatusOK)
}
