package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

// UpdateWidget sanitizes submitted widget settings.
func (h *Handler) UpdateWidget(c *gin.Context) {
	var submitted spotlight.WidgetSettings
	if err := c.ShouldBindJSON(&submitted); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	settings, err := h.svc.UpdateWidget(c.Request.Context(), submitted)
	if errors.Is(err, spotlight.ErrNoFeaturedTypes) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.internalError(c, "Failed to update widget", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// RenderWidget lists the featured items a widget shows. A widget without a
// content type answers 204.
func (h *Handler) RenderWidget(c *gin.Context) {
	var settings spotlight.WidgetSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	view, err := h.svc.RenderWidget(c.Request.Context(), settings)
	if err != nil {
		h.internalError(c, "Failed to render widget", err)
		return
	}
	if view == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, view)
}
