package notification

import "github.com/gin-gonic/gin"

// RegisterRoutes registers notification routes under the protected group
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.GET("/badge", h.Badge)
		notifications.POST("/:id/read", h.MarkRead)
		notifications.POST("/read-all", h.MarkAllRead)
		notifications.DELETE("/:id", h.Delete)
	}
}
