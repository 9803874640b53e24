package chat

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository handles all DB operations for conversations and messages
type Repository interface {
	CreateConversation(ctx context.Context, c *Conversation) error
	GetConversationByID(ctx context.Context, id string) (*Conversation, error)

	// GetConversationByParties matches the exact role ordering; callers
	// probe both orderings (the columns are role-named but the pair is
	// logically unordered).
	GetConversationByParties(ctx context.Context, sellerID, buyerID int64, propertyID *int64) (*Conversation, error)

	ListConversationsByUser(ctx context.Context, userID int64) ([]*Conversation, error)

	CreateMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*Message, error)

	// TouchOnMessage updates last_message_at and flips the recipient's
	// read flag after a message append.
	TouchOnMessage(ctx context.Context, conversationID string, senderIsSeller bool, at time.Time) error

	MarkConversationRead(ctx context.Context, conversationID string, readerID int64, readerIsSeller bool) error
	CountUnreadMessages(ctx context.Context, conversationID string, userID int64) (int, error)
	CountTotalUnread(ctx context.Context, userID int64) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateConversation(ctx context.Context, c *Conversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) GetConversationByID(ctx context.Context, id string) (*Conversation, error) {
	var c Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) GetConversationByParties(ctx context.Context, sellerID, buyerID int64, propertyID *int64) (*Conversation, error) {
	var c Conversation
	q := r.db.WithContext(ctx).
		Where("seller_id = ? AND buyer_id = ?", sellerID, buyerID)
	if propertyID != nil {
		q = q.Where("property_id = ?", *propertyID)
	} else {
		q = q.Where("property_id IS NULL")
	}
	err := q.First(&c).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListConversationsByUser(ctx context.Context, userID int64) ([]*Conversation, error) {
	var convs []*Conversation
	err := r.db.WithContext(ctx).
		Where("seller_id = ? OR buyer_id = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&convs).Error
	return convs, err
}

func (r *repository) CreateMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *repository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*Message, error) {
	var msgs []*Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&msgs).Error
	return msgs, err
}

func (r *repository) TouchOnMessage(ctx context.Context, conversationID string, senderIsSeller bool, at time.Time) error {
	updates := map[string]any{"last_message_at": at}
	if senderIsSeller {
		updates["is_read_by_buyer"] = false
		updates["is_read_by_seller"] = true
	} else {
		updates["is_read_by_seller"] = false
		updates["is_read_by_buyer"] = true
	}
	return r.db.WithContext(ctx).
		Model(&Conversation{}).
		Where("id = ?", conversationID).
		Updates(updates).Error
}

func (r *repository) MarkConversationRead(ctx context.Context, conversationID string, readerID int64, readerIsSeller bool) error {
	column := "is_read_by_buyer"
	if readerIsSeller {
		column = "is_read_by_seller"
	}
	if err := r.db.WithContext(ctx).
		Model(&Conversation{}).
		Where("id = ?", conversationID).
		Update(column, true).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversationID, readerID, false).
		Update("is_read", true).Error
}

func (r *repository) CountUnreadMessages(ctx context.Context, conversationID string, userID int64) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversationID, userID, false).
		Count(&count).Error
	return int(count), err
}

func (r *repository) CountTotalUnread(ctx context.Context, userID int64) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Table("messages m").
		Joins("JOIN conversations c ON c.id = m.conversation_id AND (c.seller_id = ? OR c.buyer_id = ?)", userID, userID).
		Where("m.sender_id != ? AND m.is_read = ?", userID, false).
		Count(&total).Error
	return int(total), err
}
