package grant

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the grants listing under the protected group
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/grants", h.ListMine)
}
