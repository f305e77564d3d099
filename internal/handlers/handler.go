// Package handlers exposes the spotlight coordinator over HTTP.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	infrajwt "github.com/jonesrussell/north-cloud/spotlight/infrastructure/jwt"
	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

// Handler serves the spotlight API.
type Handler struct {
	svc    *spotlight.Coordinator
	items  spotlight.ItemFinder
	logger infralogger.Logger
}

// NewHandler creates a Handler. items resolves item IDs from the path.
func NewHandler(svc *spotlight.Coordinator, items spotlight.ItemFinder, log infralogger.Logger) *Handler {
	return &Handler{
		svc:    svc,
		items:  items,
		logger: log,
	}
}

// principal builds the acting user from the JWT claims. Requests without
// claims act as an anonymous user who may not edit anything.
func principal(c *gin.Context) models.Principal {
	claims, ok := infrajwt.GetClaims(c)
	if !ok {
		return models.Principal{}
	}

	userID, err := strconv.ParseInt(claims.Sub, 10, 64)
	if err != nil {
		return models.Principal{Roles: claims.Roles}
	}
	return models.Principal{UserID: userID, Roles: claims.Roles}
}

// RequireRole aborts with 403 unless the principal holds role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !principal(c).HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

// loadItem resolves the :id path parameter. It writes the error response
// and returns false when the item cannot be loaded.
func (h *Handler) loadItem(c *gin.Context) (*models.Item, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return nil, false
	}

	item, err := h.items.GetItem(c.Request.Context(), id)
	switch {
	case err == nil:
		return item, true
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrInvalidItemID):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	default:
		h.log(c).Error("Failed to load item",
			infralogger.Int64("item_id", id),
			infralogger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load item"})
	}
	return nil, false
}

// log returns the request-scoped logger when the request carries one.
func (h *Handler) log(c *gin.Context) infralogger.Logger {
	if l, ok := infralogger.Lookup(c.Request.Context()); ok {
		return l
	}
	return h.logger
}

func (h *Handler) internalError(c *gin.Context, msg string, err error, fields ...infralogger.Field) {
	h.log(c).Error(msg, append(fields, infralogger.Error(err))...)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
