// Package api wires the spotlight handlers into the gin server.
package api

import (
	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/north-cloud/spotlight/infrastructure/gin"
	inframetrics "github.com/jonesrussell/north-cloud/spotlight/infrastructure/metrics"
	"github.com/jonesrussell/north-cloud/spotlight/internal/handlers"
	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
)

// RouteOptions configures the route table.
type RouteOptions struct {
	JWTSecret string
	Metrics   *inframetrics.HTTPMetrics
	// WriteRate throttles mutating routes when set.
	WriteRate *WriteLimiter
}

// SetupRoutes registers every spotlight endpoint on router.
func SetupRoutes(router *gin.Engine, h *handlers.Handler, opts RouteOptions) {
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
		router.GET("/metrics", opts.Metrics.Handler())
	}

	v1 := infragin.ProtectedGroup(router, "/api/v1", opts.JWTSecret)
	limit := opts.WriteRate.Middleware()

	settings := v1.Group("/settings")
	settings.GET("", h.GetSettings)
	settings.PUT("", limit, handlers.RequireRole(models.RoleAdministrator), h.UpdateSettings)

	items := v1.Group("/items")
	items.POST("/query", h.Query)
	items.GET("/:id/edit-state", h.EditState)
	items.POST("/:id/featured", limit, h.SaveFeatured)
	items.GET("/:id/classes", h.Classes)
	items.GET("/:id/cell", h.Cell)

	v1.GET("/featured", h.Featured)

	types := v1.Group("/content-types/:type")
	types.POST("/columns", h.Columns)
	types.GET("/view", h.View)

	widget := v1.Group("/widget")
	widget.POST("/settings", limit, h.UpdateWidget)
	widget.POST("/render", h.RenderWidget)

	v1.POST("/upgrade", limit, handlers.RequireRole(models.RoleAdministrator), h.Upgrade)
}
