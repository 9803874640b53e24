package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"imovelhub/internal/domain/request"
)

// MessageCounter supplies the unread message total for badge aggregation.
// Implemented by the chat service.
type MessageCounter interface {
	CountTotalUnread(ctx context.Context, userID int64) (int, error)
}

// ChangePublisher pushes table-change events to subscribed clients
type ChangePublisher interface {
	Publish(table, action, id string)
}

// Service handles notification fan-out and read-state mutations
type Service struct {
	repo     Repository
	messages MessageCounter
	feed     ChangePublisher
	logger   *zap.Logger
}

func NewService(repo Repository, messages MessageCounter, feed ChangePublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, messages: messages, feed: feed, logger: logger}
}

// Notify creates one durable notification record
func (s *Service) Notify(ctx context.Context, userID int64, t Type, title, message string, meta *Metadata, propertyID *int64) (*Notification, error) {
	n := &Notification{
		UserID:    userID,
		Type:      t,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := n.SetMetadata(meta); err != nil {
		return nil, err
	}
	if propertyID != nil {
		n.PropertyID.Int64 = *propertyID
		n.PropertyID.Valid = true
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	if s.feed != nil {
		s.feed.Publish(Notification{}.TableName(), "insert", fmt.Sprintf("%d", n.ID))
	}
	return n, nil
}

// ---- request.Notifier implementation ----

// RequestCreated notifies the responder of a new incoming request
func (s *Service) RequestCreated(ctx context.Context, responderID int64, req *request.AccessRequest, requesterName string) error {
	return s.fanOut(ctx, responderID, req, eventCreated, templateParams{
		ActorName:     requesterName,
		PropertyTitle: req.PropertyTitle.String,
	}, req.RequesterID, "")
}

// RequestAccepted notifies the requester, deep-linking the conversation
func (s *Service) RequestAccepted(ctx context.Context, requesterID int64, req *request.AccessRequest, responderName, conversationID string) error {
	return s.fanOut(ctx, requesterID, req, eventAccepted, templateParams{
		ActorName:     responderName,
		PropertyTitle: req.PropertyTitle.String,
	}, req.ResponderID, conversationID)
}

// RequestRejected notifies the requester, carrying the reason when present
func (s *Service) RequestRejected(ctx context.Context, requesterID int64, req *request.AccessRequest, responderName string) error {
	return s.fanOut(ctx, requesterID, req, eventRejected, templateParams{
		ActorName:     responderName,
		PropertyTitle: req.PropertyTitle.String,
		Reason:        req.RejectionReason.String,
	}, req.ResponderID, "")
}

// RequestPaid confirms the buyer's vault access after payment
func (s *Service) RequestPaid(ctx context.Context, requesterID int64, req *request.AccessRequest) error {
	return s.fanOut(ctx, requesterID, req, eventPaid, templateParams{
		PropertyTitle: req.PropertyTitle.String,
	}, req.ResponderID, "")
}

func (s *Service) fanOut(ctx context.Context, recipientID int64, req *request.AccessRequest, ev event, p templateParams, actorID int64, conversationID string) error {
	entry, ok := lookup(req.Kind, ev)
	if !ok {
		return fmt.Errorf("no notification catalog entry for kind=%s event=%s", req.Kind, ev)
	}
	meta := &Metadata{
		RequestID:      req.ID,
		ActorID:        actorID,
		ConversationID: conversationID,
		Reason:         p.Reason,
	}
	if req.VaultDocumentID.Valid {
		v := req.VaultDocumentID.Int64
		meta.VaultDocumentID = &v
	}
	var propertyID *int64
	if req.PropertyID.Valid {
		v := req.PropertyID.Int64
		propertyID = &v
	}
	_, err := s.Notify(ctx, recipientID, entry.Type, entry.Title, entry.Message(p), meta, propertyID)
	return err
}

// ---- read-state operations ----

// List returns a page of the user's notifications plus the unread count
func (s *Service) List(ctx context.Context, userID int64, limit, offset int) ([]*Notification, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		unread = 0
	}
	return list, unread, nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	return s.repo.Delete(ctx, id, userID)
}

// BadgeCount is the UI badge total: unread notifications plus unread chat
// messages, maintained independently and summed, never deduplicated.
func (s *Service) BadgeCount(ctx context.Context, userID int64) (int, error) {
	unreadNotifs, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	unreadMsgs := 0
	if s.messages != nil {
		unreadMsgs, err = s.messages.CountTotalUnread(ctx, userID)
		if err != nil {
			s.logger.Error("count unread messages failed", zap.Int64("user_id", userID), zap.Error(err))
			unreadMsgs = 0
		}
	}
	return unreadNotifs + unreadMsgs, nil
}
