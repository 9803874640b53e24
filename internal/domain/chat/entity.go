package chat

import (
	"database/sql"
	"time"
)

// MessageType distinguishes user-typed text from engine-generated entries
type MessageType string

const (
	MessageTypeUser       MessageType = "user"
	MessageTypeSystem     MessageType = "system"
	MessageTypeScheduling MessageType = "scheduling"
)

// Conversation is the channel between a property side (seller) and an
// interested party (buyer). Created lazily on the first acceptance between
// a pair and reused afterwards.
type Conversation struct {
	ID             string        `gorm:"column:id;primaryKey" json:"id"`
	SellerID       int64         `gorm:"column:seller_id;index:idx_conversations_pair" json:"seller_id"`
	BuyerID        int64         `gorm:"column:buyer_id;index:idx_conversations_pair" json:"buyer_id"`
	PropertyID     sql.NullInt64 `gorm:"column:property_id" json:"property_id,omitempty"`
	PropertyTitle  string        `gorm:"column:property_title" json:"property_title"`
	LastMessageAt  time.Time     `gorm:"column:last_message_at" json:"last_message_at"`
	IsReadBySeller bool          `gorm:"column:is_read_by_seller" json:"is_read_by_seller"`
	IsReadByBuyer  bool          `gorm:"column:is_read_by_buyer" json:"is_read_by_buyer"`
	CreatedAt      time.Time     `gorm:"column:created_at" json:"created_at"`
}

func (Conversation) TableName() string { return "conversations" }

// HasParticipant reports whether the user is one of the two parties
func (c *Conversation) HasParticipant(userID int64) bool {
	return c.SellerID == userID || c.BuyerID == userID
}

// Message is a single entry in a conversation
type Message struct {
	ID             string      `gorm:"column:id;primaryKey" json:"id"`
	ConversationID string      `gorm:"column:conversation_id;index" json:"conversation_id"`
	SenderID       int64       `gorm:"column:sender_id" json:"sender_id"`
	Content        string      `gorm:"column:content" json:"content"`
	MessageType    MessageType `gorm:"column:message_type" json:"message_type"`
	IsRead         bool        `gorm:"column:is_read" json:"is_read"`
	CreatedAt      time.Time   `gorm:"column:created_at" json:"created_at"`
}

func (Message) TableName() string { return "messages" }

// ConversationWithUnread is used in list responses
type ConversationWithUnread struct {
	*Conversation
	UnreadCount int `json:"unread_count"`
}
