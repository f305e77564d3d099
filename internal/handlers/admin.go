package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

// defaultColumns is the list screen layout used when none is posted.
var defaultColumns = []spotlight.Column{
	{Key: "cb", Label: ""},
	{Key: "title", Label: "Title"},
	{Key: "author", Label: "Author"},
	{Key: "date", Label: "Date"},
}

// Columns returns the admin list columns of a content type. The body may
// carry the current columns; an empty body uses the default layout.
func (h *Handler) Columns(c *gin.Context) {
	columns := defaultColumns
	if c.Request.Body != nil {
		var posted []spotlight.Column
		switch err := c.ShouldBindJSON(&posted); {
		case errors.Is(err, io.EOF):
		case err != nil:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		default:
			columns = posted
		}
	}

	out, err := h.svc.Columns(c.Request.Context(), c.Param("type"), columns)
	if err != nil {
		h.internalError(c, "Failed to build columns", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": out})
}

// View returns the "Featured (N)" filter link of a content type.
func (h *Handler) View(c *gin.Context) {
	view, err := h.svc.FeaturedView(c.Request.Context(), c.Param("type"), c.Query(spotlight.FeatureGroup))
	if err != nil {
		h.internalError(c, "Failed to build view", err)
		return
	}
	if view == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No featured view for this content type"})
		return
	}
	c.JSON(http.StatusOK, view)
}
