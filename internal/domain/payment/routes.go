package payment

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the webhook under the public group; the provider
// authenticates via the callback signature, not a session.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	payments := r.Group("/payments")
	{
		payments.POST("/webhook", h.ResultCallback)
	}
}
