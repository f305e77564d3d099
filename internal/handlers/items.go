package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

// defaultFeaturedLimit caps GET /featured when no limit is given.
const defaultFeaturedLimit = 10

// EditState returns the featured checkbox state for the edit screen.
func (h *Handler) EditState(c *gin.Context) {
	item, ok := h.loadItem(c)
	if !ok {
		return
	}

	state, err := h.svc.EditState(c.Request.Context(), *item, principal(c))
	if err != nil {
		h.internalError(c, "Failed to load edit state", err, infralogger.Int64("item_id", item.ID))
		return
	}
	c.JSON(http.StatusOK, state)
}

// SaveFeatured applies the featured checkbox from a submitted edit form.
// Saves that are skipped for permission or token reasons answer 403 without
// touching the item.
func (h *Handler) SaveFeatured(c *gin.Context) {
	item, ok := h.loadItem(c)
	if !ok {
		return
	}

	var form spotlight.SaveForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if form.Nonce == "" {
		form.Nonce = c.GetHeader("X-WP-Nonce")
	}

	outcome, err := h.svc.OnSave(c.Request.Context(), *item, principal(c), form)
	if err != nil {
		h.internalError(c, "Failed to save featured state", err, infralogger.Int64("item_id", item.ID))
		return
	}

	switch outcome {
	case spotlight.OutcomeSkippedPermission, spotlight.OutcomeSkippedToken:
		c.JSON(http.StatusForbidden, gin.H{"outcome": outcome})
	default:
		c.JSON(http.StatusOK, gin.H{"outcome": outcome, "applied": outcome.Applied()})
	}
}

// Classes returns the front-end classes of an item. Existing classes are
// passed as repeated class query parameters.
func (h *Handler) Classes(c *gin.Context) {
	item, ok := h.loadItem(c)
	if !ok {
		return
	}

	classes, err := h.svc.Classes(c.Request.Context(), *item, c.QueryArray("class"))
	if err != nil {
		h.internalError(c, "Failed to compute classes", err, infralogger.Int64("item_id", item.ID))
		return
	}
	if classes == nil {
		classes = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

// Cell returns the admin list cell for the column query parameter.
func (h *Handler) Cell(c *gin.Context) {
	item, ok := h.loadItem(c)
	if !ok {
		return
	}

	column := c.DefaultQuery("column", spotlight.ColumnKey)
	value, err := h.svc.ColumnCell(c.Request.Context(), column, *item)
	if err != nil {
		h.internalError(c, "Failed to render cell", err, infralogger.Int64("item_id", item.ID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"column": column, "value": value})
}

// Query runs an item query through the rewrite pipeline.
func (h *Handler) Query(c *gin.Context) {
	var q models.ItemQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	page, err := h.svc.Query(c.Request.Context(), q)
	if err != nil {
		h.internalError(c, "Failed to run query", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Featured lists featured items, optionally of one content type.
func (h *Handler) Featured(c *gin.Context) {
	limit := defaultFeaturedLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	page, err := h.svc.Query(c.Request.Context(), spotlight.FeaturedQuery(c.Query("type"), limit))
	if err != nil {
		h.internalError(c, "Failed to list featured items", err)
		return
	}
	c.JSON(http.StatusOK, page)
}
