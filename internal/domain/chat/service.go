package chat

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChangePublisher pushes table-change events to subscribed clients
type ChangePublisher interface {
	Publish(table, action, id string)
}

// Service handles conversation provisioning and messaging
type Service struct {
	repo Repository
	feed ChangePublisher
}

func NewService(repo Repository, feed ChangePublisher) *Service {
	return &Service{repo: repo, feed: feed}
}

// GetOrCreate returns the conversation for a pair and resource, creating it
// on first use. The lookup probes both role orderings so one logical pair
// never ends up with two channels.
func (s *Service) GetOrCreate(ctx context.Context, sellerID, buyerID int64, propertyID *int64, propertyTitle string) (*Conversation, error) {
	if sellerID == buyerID {
		return nil, ErrCannotChatSelf
	}

	existing, err := s.repo.GetConversationByParties(ctx, sellerID, buyerID, propertyID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		existing, err = s.repo.GetConversationByParties(ctx, buyerID, sellerID, propertyID)
		if err != nil {
			return nil, err
		}
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now()
	conv := &Conversation{
		ID:             uuid.New().String(),
		SellerID:       sellerID,
		BuyerID:        buyerID,
		PropertyTitle:  propertyTitle,
		LastMessageAt:  now,
		IsReadBySeller: true,
		IsReadByBuyer:  true,
		CreatedAt:      now,
	}
	if propertyID != nil {
		conv.PropertyID = sql.NullInt64{Int64: *propertyID, Valid: true}
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	s.publish(Conversation{}.TableName(), "insert", conv.ID)
	return conv, nil
}

// AppendSystemMessage records an engine-generated entry in the channel,
// e.g. the human-readable note of an access grant.
func (s *Service) AppendSystemMessage(ctx context.Context, conversationID, content string) error {
	conv, err := s.repo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv == nil {
		return ErrConversationNotFound
	}

	now := time.Now()
	msg := &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       conv.SellerID,
		Content:        content,
		MessageType:    MessageTypeSystem,
		CreatedAt:      now,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return err
	}
	if err := s.repo.TouchOnMessage(ctx, conversationID, true, now); err != nil {
		return err
	}
	s.publish(Message{}.TableName(), "insert", msg.ID)
	return nil
}

// SendMessage appends a user message. Validates the sender is a participant.
func (s *Service) SendMessage(ctx context.Context, senderID int64, conversationID, content string) (*Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := s.repo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	if !conv.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}

	now := time.Now()
	msg := &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		MessageType:    MessageTypeUser,
		CreatedAt:      now,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.repo.TouchOnMessage(ctx, conversationID, senderID == conv.SellerID, now); err != nil {
		return nil, err
	}
	s.publish(Message{}.TableName(), "insert", msg.ID)
	return msg, nil
}

// GetMessages returns a page of messages, oldest first
func (s *Service) GetMessages(ctx context.Context, userID int64, conversationID string, limit, offset int) ([]*Message, error) {
	conv, err := s.repo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListMessages(ctx, conversationID, limit, offset)
}

// ListConversations returns the user's conversations with unread counts,
// most recent activity first
func (s *Service) ListConversations(ctx context.Context, userID int64) ([]*ConversationWithUnread, error) {
	convs, err := s.repo.ListConversationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*ConversationWithUnread, 0, len(convs))
	for _, c := range convs {
		unread, _ := s.repo.CountUnreadMessages(ctx, c.ID, userID)
		out = append(out, &ConversationWithUnread{Conversation: c, UnreadCount: unread})
	}
	return out, nil
}

// MarkAsRead flips the reader's conversation flag and their unread messages
func (s *Service) MarkAsRead(ctx context.Context, userID int64, conversationID string) error {
	conv, err := s.repo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv == nil {
		return ErrConversationNotFound
	}
	if !conv.HasParticipant(userID) {
		return ErrNotParticipant
	}
	if err := s.repo.MarkConversationRead(ctx, conversationID, userID, userID == conv.SellerID); err != nil {
		return err
	}
	s.publish(Conversation{}.TableName(), "update", conversationID)
	return nil
}

// CountTotalUnread returns unread messages across all the user's
// conversations. Summed with the unread notification count for badges.
func (s *Service) CountTotalUnread(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountTotalUnread(ctx, userID)
}

func (s *Service) publish(table, action, id string) {
	if s.feed != nil {
		s.feed.Publish(table, action, id)
	}
}
