package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups everything mounted under the API prefix.
type Handlers struct {
	Dashboard  *DashboardHandler
	Import     *ImportHandler
	Generate   *GenerateHandler
	Email      *EmailHandler
	References *ReferenceHandler
	// AdminAuth guards the administration routes when set.
	AdminAuth gin.HandlerFunc
}

// Register mounts the portal routes on group.
func Register(group *gin.RouterGroup, h Handlers) {
	group.GET("/", h.Dashboard.Steps)

	group.POST("/import", h.Import.Import)
	group.POST("/import/report", h.Import.Report)

	group.GET("/generate/form", h.Generate.Form)
	group.POST("/generate/selection", h.Generate.Selection)
	group.POST("/generate", h.Generate.Generate)
	group.GET("/download/:sessionId", h.Generate.Download)

	group.POST("/email", h.Email.Send)

	group.GET("/reference", h.References.Snapshot)

	admin := group.Group("/admin")
	if h.AdminAuth != nil {
		admin.Use(h.AdminAuth)
	}
	admin.GET("/:kind", h.References.List)
	admin.POST("/:kind", h.References.Create)
	admin.PUT("/:kind/:id", h.References.Update)
	admin.DELETE("/:kind/:id", h.References.Delete)
}
