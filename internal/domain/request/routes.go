package request

import "github.com/gin-gonic/gin"

// RegisterRoutes registers access-request routes under the protected group
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	requests := r.Group("/requests")
	{
		requests.POST("", h.Create)
		requests.GET("/outgoing", h.ListOutgoing)
		requests.GET("/incoming", h.ListIncoming)
		requests.POST("/:id/accept", h.Accept)
		requests.POST("/:id/reject", h.Reject)
	}
}
