package chat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"imovelhub/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListConversations returns the user's conversations, latest activity first
func (h *Handler) ListConversations(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	convs, err := h.service.ListConversations(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list conversations")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"conversations": convs})
}

// GetMessages returns a page of a conversation's messages
func (h *Handler) GetMessages(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	limit := 50
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	offset := 0
	if s := c.Query("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	msgs, err := h.service.GetMessages(c.Request.Context(), userID, c.Param("id"), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": msgs})
}

type sendMessageDTO struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage appends a user message to a conversation
func (h *Handler) SendMessage(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	var dto sendMessageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Message content is required")
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), userID, c.Param("id"), dto.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, msg)
}

// MarkAsRead marks the conversation read for the caller
func (h *Handler) MarkAsRead(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": c.Param("id")})
}

// GetUnreadCount returns total unread messages across conversations
func (h *Handler) GetUnreadCount(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	count, err := h.service.CountTotalUnread(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to count unread messages")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread_count": count})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrConversationNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Conversation not found")
	case errors.Is(err, ErrNotParticipant):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not a participant of this conversation")
	case errors.Is(err, ErrEmptyMessage):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Message content is empty")
	default:
		response.Error(c, http.StatusInternalServerError, "CHAT_ERROR", "Failed to process chat operation")
	}
}
