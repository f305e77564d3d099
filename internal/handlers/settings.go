package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
)

// SettingsRequest is the body of PUT /settings.
type SettingsRequest struct {
	ContentTypes []string `json:"content_types"`
}

// GetSettings lists the settings checkboxes and the eligible content types.
func (h *Handler) GetSettings(c *gin.Context) {
	ctx := c.Request.Context()

	fields, err := h.svc.SettingsFields(ctx)
	if err != nil {
		h.internalError(c, "Failed to load settings", err)
		return
	}
	eligible, err := h.svc.EligibleTypes(ctx)
	if err != nil {
		h.internalError(c, "Failed to load settings", err)
		return
	}
	if eligible == nil {
		eligible = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"fields":        fields,
		"content_types": eligible,
	})
}

// UpdateSettings sanitizes and stores the featured content types.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	saved, err := h.svc.SaveSettings(c.Request.Context(), req.ContentTypes)
	if err != nil {
		h.internalError(c, "Failed to save settings", err)
		return
	}

	h.log(c).Info("Settings updated",
		infralogger.Int64("user_id", principal(c).UserID),
		infralogger.Strings("content_types", saved),
	)
	c.JSON(http.StatusOK, gin.H{"content_types": saved})
}

// Upgrade runs the legacy flag migration now, even when the version marker
// is already written.
func (h *Handler) Upgrade(c *gin.Context) {
	report, err := h.svc.RunMigration(c.Request.Context())
	if err != nil {
		h.internalError(c, "Migration failed", err)
		return
	}
	c.JSON(http.StatusOK, report)
}
