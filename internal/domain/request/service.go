package request

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"imovelhub/internal/domain/chat"
)

// Outcome of a responder decision
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
)

// Notifier fans out durable notifications for lifecycle transitions.
// Implemented by the notification service.
type Notifier interface {
	RequestCreated(ctx context.Context, responderID int64, req *AccessRequest, requesterName string) error
	RequestAccepted(ctx context.Context, requesterID int64, req *AccessRequest, responderName, conversationID string) error
	RequestRejected(ctx context.Context, requesterID int64, req *AccessRequest, responderName string) error
	RequestPaid(ctx context.Context, requesterID int64, req *AccessRequest) error
}

// Conversations provisions the shared channel between the two parties.
// Implemented by the chat service.
type Conversations interface {
	GetOrCreate(ctx context.Context, sellerID, buyerID int64, propertyID *int64, propertyTitle string) (*chat.Conversation, error)
	AppendSystemMessage(ctx context.Context, conversationID, content string) error
}

// Grants records durable access grants scoped to a resource.
type Grants interface {
	Ensure(ctx context.Context, kind string, granterID, granteeID int64, propertyID, vaultDocumentID *int64, expiresAt *time.Time) error
}

// NameResolver resolves a user id to a display name. Never fails:
// missing profiles degrade to a placeholder.
type NameResolver interface {
	DisplayName(ctx context.Context, userID int64) string
}

// ChangePublisher pushes table-change events to subscribed clients
type ChangePublisher interface {
	Publish(table, action, id string)
}

// Config holds the lifecycle windows
type Config struct {
	Expiry             time.Duration // pending window for contact/vault requests
	BuyerVaultCooldown time.Duration // re-request cooldown after a buyer-vault rejection
	VaultAccessWindow  time.Duration // buyer read-access window seeded on payment
}

// Service is the access-request lifecycle engine: creation preconditions,
// accept/reject decisions and their side effects.
type Service struct {
	repo   Repository
	notifs Notifier
	convs  Conversations
	grants Grants
	names  NameResolver
	feed   ChangePublisher
	cfg    Config
	logger *zap.Logger
}

func NewService(repo Repository, notifs Notifier, convs Conversations, grants Grants, names NameResolver, feed ChangePublisher, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		notifs: notifs,
		convs:  convs,
		grants: grants,
		names:  names,
		feed:   feed,
		cfg:    cfg,
		logger: logger,
	}
}

// CreateInput carries the requester's submission. ResponderID is derived
// upstream from the resource being accessed (property owner / professional).
type CreateInput struct {
	Kind            Kind
	ResponderID     int64
	PropertyID      *int64
	VaultDocumentID *int64
	PropertyTitle   string
	Message         string
	AuditIP         string
}

// Create inserts a new pending request after the precondition chain:
// authentication, buyer-vault cooldown, duplicate non-terminal request.
// On success the responder is notified of the new request.
func (s *Service) Create(ctx context.Context, requesterID int64, in CreateInput) (*AccessRequest, error) {
	if requesterID == 0 {
		return nil, ErrUnauthenticated
	}
	if !in.Kind.Valid() || in.ResponderID == 0 || in.ResponderID == requesterID {
		return nil, ErrValidation
	}

	if in.Kind == KindBuyerVaultAccess {
		last, err := s.repo.LastRejected(ctx, requesterID, in.Kind, in.PropertyID, in.VaultDocumentID)
		if err != nil {
			return nil, fmt.Errorf("check cooldown: %w", err)
		}
		if last != nil && last.DecidedAt.Valid {
			elapsed := time.Since(last.DecidedAt.Time)
			if elapsed < s.cfg.BuyerVaultCooldown {
				remaining := s.cfg.BuyerVaultCooldown - elapsed
				return nil, &CooldownActiveError{HoursRemaining: int(math.Ceil(remaining.Hours()))}
			}
		}
	}

	existing, err := s.repo.FindActive(ctx, requesterID, in.Kind, in.PropertyID, in.VaultDocumentID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if existing != nil {
		return nil, &DuplicateRequestError{Status: existing.Status}
	}

	now := time.Now()
	req := &AccessRequest{
		ID:          uuid.New().String(),
		Kind:        in.Kind,
		RequesterID: requesterID,
		ResponderID: in.ResponderID,
		Status:      StatusPending,
		CreatedAt:   now,
	}
	if in.PropertyID != nil {
		req.PropertyID = sql.NullInt64{Int64: *in.PropertyID, Valid: true}
	}
	if in.VaultDocumentID != nil {
		req.VaultDocumentID = sql.NullInt64{Int64: *in.VaultDocumentID, Valid: true}
	}
	if in.PropertyTitle != "" {
		req.PropertyTitle = sql.NullString{String: in.PropertyTitle, Valid: true}
	}
	if in.Message != "" {
		req.Message = sql.NullString{String: in.Message, Valid: true}
	}
	if in.AuditIP != "" {
		req.AuditIP = sql.NullString{String: in.AuditIP, Valid: true}
	}
	// Buyer-vault requests are bounded by the rejection cooldown instead of
	// a pending-window deadline.
	if in.Kind != KindBuyerVaultAccess {
		req.ExpiresAt = sql.NullTime{Time: now.Add(s.cfg.Expiry), Valid: true}
	}

	if err := s.repo.Create(ctx, req); err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			// Lost the insert race; report the winner's status.
			if winner, ferr := s.repo.FindActive(ctx, requesterID, in.Kind, in.PropertyID, in.VaultDocumentID); ferr == nil && winner != nil {
				return nil, &DuplicateRequestError{Status: winner.Status}
			}
			return nil, &DuplicateRequestError{Status: StatusPending}
		}
		return nil, fmt.Errorf("create request: %w", err)
	}

	if s.notifs != nil {
		requesterName := s.displayName(ctx, requesterID)
		if err := s.notifs.RequestCreated(ctx, req.ResponderID, req, requesterName); err != nil {
			s.logger.Error("notify responder of new request failed",
				zap.String("request_id", req.ID), zap.Error(err))
		}
	}
	s.publish("insert", req.ID)

	return req, nil
}

// Decide applies an accept/reject decision. The transition is a conditional
// update from pending, applied at most once; everything after the committed
// transition is best-effort and never rolls it back.
func (s *Service) Decide(ctx context.Context, id string, outcome Outcome, reason string) error {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}
	if req == nil {
		return ErrNotFound
	}
	if req.Status != StatusPending {
		return ErrAlreadyDecided
	}

	var target Status
	var reasonPtr *string
	switch outcome {
	case OutcomeRejected:
		target = StatusRejected
		if reason != "" {
			reasonPtr = &reason
		}
	case OutcomeAccepted:
		target = StatusAccepted
		if req.Kind == KindBuyerVaultAccess {
			target = StatusApproved // awaits the payment webhook
		}
	default:
		return ErrValidation
	}

	now := time.Now()
	ok, err := s.repo.TransitionFromPending(ctx, id, target, reasonPtr, now)
	if err != nil {
		return fmt.Errorf("transition request: %w", err)
	}
	if !ok {
		// Another responder (or a double click) got there first.
		return ErrAlreadyDecided
	}

	req.Status = target
	req.DecidedAt = sql.NullTime{Time: now, Valid: true}
	if reasonPtr != nil {
		req.RejectionReason = sql.NullString{String: *reasonPtr, Valid: true}
	}
	defer s.publish("update", req.ID)

	responderName := s.displayName(ctx, req.ResponderID)

	if target == StatusRejected {
		if s.notifs != nil {
			if err := s.notifs.RequestRejected(ctx, req.RequesterID, req, responderName); err != nil {
				s.logger.Error("notify requester of rejection failed",
					zap.String("request_id", req.ID), zap.Error(err))
			}
		}
		return nil
	}

	// Acceptance side effects. The status transition above is the source of
	// truth; a missed grant must not happen silently, so failures are logged
	// loudly, but none of them undo the decision.
	if req.Kind != KindBuyerVaultAccess {
		if err := s.grants.Ensure(ctx, string(req.Kind), req.ResponderID, req.RequesterID, req.propertyIDPtr(), vaultDocPtr(req), nil); err != nil {
			s.logger.Error("record access grant failed",
				zap.String("request_id", req.ID), zap.Error(err))
		}
	}

	conversationID := ""
	conv, err := s.convs.GetOrCreate(ctx, req.ResponderID, req.RequesterID, req.propertyIDPtr(), req.PropertyTitle.String)
	if err != nil {
		s.logger.Error("provision conversation failed",
			zap.String("request_id", req.ID), zap.Error(err))
	} else {
		conversationID = conv.ID
		if err := s.convs.AppendSystemMessage(ctx, conv.ID, grantMessage(req.Kind, responderName)); err != nil {
			s.logger.Error("append system message failed",
				zap.String("conversation_id", conv.ID), zap.Error(err))
		}
	}

	if s.notifs != nil {
		if err := s.notifs.RequestAccepted(ctx, req.RequesterID, req, responderName, conversationID); err != nil {
			s.logger.Error("notify requester of acceptance failed",
				zap.String("request_id", req.ID), zap.Error(err))
		}
	}
	return nil
}

// MarkPaid applies the approved -> paid transition for buyer-vault requests.
// Invoked only by the payment-confirmation collaborator, never by users.
// Seeds the buyer's time-boxed vault read-access window.
func (s *Service) MarkPaid(ctx context.Context, id string) error {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}
	if req == nil {
		return ErrNotFound
	}
	if req.Kind != KindBuyerVaultAccess || req.Status != StatusApproved {
		return ErrAlreadyDecided
	}

	now := time.Now()
	ok, err := s.repo.TransitionApprovedToPaid(ctx, id, now)
	if err != nil {
		return fmt.Errorf("transition to paid: %w", err)
	}
	if !ok {
		return ErrAlreadyDecided
	}
	req.Status = StatusPaid
	defer s.publish("update", req.ID)

	expires := now.Add(s.cfg.VaultAccessWindow)
	if err := s.grants.Ensure(ctx, string(req.Kind), req.ResponderID, req.RequesterID, req.propertyIDPtr(), vaultDocPtr(req), &expires); err != nil {
		s.logger.Error("record vault access grant failed",
			zap.String("request_id", req.ID), zap.Error(err))
	}

	if s.notifs != nil {
		if err := s.notifs.RequestPaid(ctx, req.RequesterID, req); err != nil {
			s.logger.Error("notify requester of payment failed",
				zap.String("request_id", req.ID), zap.Error(err))
		}
	}
	return nil
}

// ListOutgoing returns the requester's requests, newest first
func (s *Service) ListOutgoing(ctx context.Context, requesterID int64) ([]*AccessRequest, error) {
	if requesterID == 0 {
		return nil, ErrUnauthenticated
	}
	return s.repo.ListByRequester(ctx, requesterID)
}

// ListIncoming returns the responder's inbox, newest first
func (s *Service) ListIncoming(ctx context.Context, responderID int64) ([]*AccessRequest, error) {
	if responderID == 0 {
		return nil, ErrUnauthenticated
	}
	return s.repo.ListByResponder(ctx, responderID)
}

// ExpireOverdue persists expired on pending rows past their deadline.
// Run from the maintenance sweep.
func (s *Service) ExpireOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireOverdue(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publish("update", "")
		s.logger.Info("expired overdue requests", zap.Int64("count", n))
	}
	return n, nil
}

func (s *Service) displayName(ctx context.Context, userID int64) string {
	if s.names == nil {
		return ""
	}
	return s.names.DisplayName(ctx, userID)
}

func (s *Service) publish(action, id string) {
	if s.feed != nil {
		s.feed.Publish(AccessRequest{}.TableName(), action, id)
	}
}

func vaultDocPtr(r *AccessRequest) *int64 {
	if !r.VaultDocumentID.Valid {
		return nil
	}
	v := r.VaultDocumentID.Int64
	return &v
}

func grantMessage(kind Kind, responderName string) string {
	if responderName == "" {
		responderName = "O anunciante"
	}
	switch kind {
	case KindContact:
		return fmt.Sprintf("%s aceitou o pedido de contacto. Já podem trocar mensagens.", responderName)
	case KindVaultAccess:
		return fmt.Sprintf("%s concedeu acesso ao cofre digital do imóvel.", responderName)
	default:
		return fmt.Sprintf("%s aprovou o pedido de acesso ao cofre. O acesso fica disponível após o pagamento.", responderName)
	}
}
