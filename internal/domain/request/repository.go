package request

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository handles all DB operations for access requests
type Repository interface {
	Create(ctx context.Context, r *AccessRequest) error
	GetByID(ctx context.Context, id string) (*AccessRequest, error)

	// FindActive returns the non-terminal (pending or approved) request for
	// a (requester, resource) pair, or nil.
	FindActive(ctx context.Context, requesterID int64, kind Kind, propertyID, vaultDocumentID *int64) (*AccessRequest, error)

	// LastRejected returns the most recently rejected request for the pair,
	// or nil. Used for the buyer-vault re-request cooldown.
	LastRejected(ctx context.Context, requesterID int64, kind Kind, propertyID, vaultDocumentID *int64) (*AccessRequest, error)

	// TransitionFromPending flips status only if it is still pending.
	// Returns false when the row was already decided (or missing).
	TransitionFromPending(ctx context.Context, id string, to Status, reason *string, decidedAt time.Time) (bool, error)

	// TransitionApprovedToPaid flips approved -> paid. Returns false when
	// the row is not in approved state.
	TransitionApprovedToPaid(ctx context.Context, id string, decidedAt time.Time) (bool, error)

	ListByRequester(ctx context.Context, requesterID int64) ([]*AccessRequest, error)
	ListByResponder(ctx context.Context, responderID int64) ([]*AccessRequest, error)

	// ExpireOverdue persists expired on pending rows past their window.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, req *AccessRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*AccessRequest, error) {
	var req AccessRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func resourceScope(q *gorm.DB, propertyID, vaultDocumentID *int64) *gorm.DB {
	if propertyID != nil {
		q = q.Where("property_id = ?", *propertyID)
	} else {
		q = q.Where("property_id IS NULL")
	}
	if vaultDocumentID != nil {
		q = q.Where("vault_document_id = ?", *vaultDocumentID)
	} else {
		q = q.Where("vault_document_id IS NULL")
	}
	return q
}

func (r *repository) FindActive(ctx context.Context, requesterID int64, kind Kind, propertyID, vaultDocumentID *int64) (*AccessRequest, error) {
	var req AccessRequest
	q := r.db.WithContext(ctx).
		Where("requester_id = ? AND kind = ?", requesterID, kind).
		Where("status IN ?", []Status{StatusPending, StatusApproved})
	err := resourceScope(q, propertyID, vaultDocumentID).First(&req).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) LastRejected(ctx context.Context, requesterID int64, kind Kind, propertyID, vaultDocumentID *int64) (*AccessRequest, error) {
	var req AccessRequest
	q := r.db.WithContext(ctx).
		Where("requester_id = ? AND kind = ? AND status = ?", requesterID, kind, StatusRejected)
	err := resourceScope(q, propertyID, vaultDocumentID).
		Order("decided_at DESC").
		First(&req).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) TransitionFromPending(ctx context.Context, id string, to Status, reason *string, decidedAt time.Time) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"decided_at": decidedAt,
	}
	if reason != nil {
		updates["rejection_reason"] = *reason
	}
	// Conditional update: the WHERE on status is the sole backstop against
	// a double-decision race, so it must never become read-then-write.
	res := r.db.WithContext(ctx).
		Model(&AccessRequest{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) TransitionApprovedToPaid(ctx context.Context, id string, decidedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&AccessRequest{}).
		Where("id = ? AND status = ?", id, StatusApproved).
		Updates(map[string]any{"status": StatusPaid, "decided_at": decidedAt})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListByRequester(ctx context.Context, requesterID int64) ([]*AccessRequest, error) {
	var reqs []*AccessRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) ListByResponder(ctx context.Context, responderID int64) ([]*AccessRequest, error) {
	var reqs []*AccessRequest
	err := r.db.WithContext(ctx).
		Where("responder_id = ?", responderID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&AccessRequest{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", StatusPending, now).
		Updates(map[string]any{"status": StatusExpired, "decided_at": now})
	return res.RowsAffected, res.Error
}
