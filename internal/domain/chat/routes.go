package chat

import "github.com/gin-gonic/gin"

// RegisterRoutes registers conversation routes under the protected group
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	conversations := r.Group("/conversations")
	{
		conversations.GET("", h.ListConversations)
		conversations.GET("/unread", h.GetUnreadCount)
		conversations.GET("/:id/messages", h.GetMessages)
		conversations.POST("/:id/messages", h.SendMessage)
		conversations.POST("/:id/read", h.MarkAsRead)
	}
}
