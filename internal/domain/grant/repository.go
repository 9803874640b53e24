package grant

import (
	"context"

	"gorm.io/gorm"
)

// Repository handles all DB operations for access grants
type Repository interface {
	Create(ctx context.Context, g *Grant) error
	Find(ctx context.Context, kind string, granterID, granteeID int64, propertyID, vaultDocumentID *int64) (*Grant, error)
	Update(ctx context.Context, g *Grant) error
	ListByGrantee(ctx context.Context, granteeID int64) ([]*Grant, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, g *Grant) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *repository) Find(ctx context.Context, kind string, granterID, granteeID int64, propertyID, vaultDocumentID *int64) (*Grant, error) {
	var g Grant
	q := r.db.WithContext(ctx).
		Where("kind = ? AND granter_id = ? AND grantee_id = ?", kind, granterID, granteeID)
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
	err := q.First(&g).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *repository) Update(ctx context.Context, g *Grant) error {
	return r.db.WithContext(ctx).Save(g).Error
}

func (r *repository) ListByGrantee(ctx context.Context, granteeID int64) ([]*Grant, error) {
	var grants []*Grant
	err := r.db.WithContext(ctx).
		Where("grantee_id = ?", granteeID).
		Order("created_at DESC").
		Find(&grants).Error
	return grants, err
}
