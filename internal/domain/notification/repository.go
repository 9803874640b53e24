package notification

import (
	"context"

	"gorm.io/gorm"
)

// Repository handles all DB operations for notifications
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)

	// MarkRead and Delete are owner-scoped: a mismatched user silently
	// affects zero rows.
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	Delete(ctx context.Context, id, userID int64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Notification, error) {
	var list []*Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *repository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return int(count), err
}

func (r *repository) MarkRead(ctx context.Context, id, userID int64) error {
	return r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}

// MarkAllRead is a single UPDATE over the visible unread set, so from the
// caller's perspective it is all-or-nothing.
func (r *repository) MarkAllRead(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *repository) Delete(ctx context.Context, id, userID int64) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Notification{}).Error
}
