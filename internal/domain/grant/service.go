package grant

import (
	"context"
	"database/sql"
	"time"
)

// Service records and checks access grants
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Ensure records a grant if none exists for the scope; a re-run of the same
// acceptance step finds the existing row instead of inserting a duplicate.
// An expiry refresh (buyer-vault re-purchase) updates the window in place.
func (s *Service) Ensure(ctx context.Context, kind string, granterID, granteeID int64, propertyID, vaultDocumentID *int64, expiresAt *time.Time) error {
	existing, err := s.repo.Find(ctx, kind, granterID, granteeID, propertyID, vaultDocumentID)
	if err != nil {
		return err
	}
	if existing != nil {
		if expiresAt != nil && (!existing.ExpiresAt.Valid || existing.ExpiresAt.Time.Before(*expiresAt)) {
			existing.ExpiresAt = sql.NullTime{Time: *expiresAt, Valid: true}
			return s.repo.Update(ctx, existing)
		}
		return nil
	}

	g := &Grant{
		Kind:      kind,
		GranterID: granterID,
		GranteeID: granteeID,
		CreatedAt: time.Now(),
	}
	if propertyID != nil {
		g.PropertyID = sql.NullInt64{Int64: *propertyID, Valid: true}
	}
	if vaultDocumentID != nil {
		g.VaultDocumentID = sql.NullInt64{Int64: *vaultDocumentID, Valid: true}
	}
	if expiresAt != nil {
		g.ExpiresAt = sql.NullTime{Time: *expiresAt, Valid: true}
	}
	return s.repo.Create(ctx, g)
}

// Has reports whether an active grant exists for the scope
func (s *Service) Has(ctx context.Context, kind string, granterID, granteeID int64, propertyID, vaultDocumentID *int64) (bool, error) {
	g, err := s.repo.Find(ctx, kind, granterID, granteeID, propertyID, vaultDocumentID)
	if err != nil {
		return false, err
	}
	return g != nil && g.Active(time.Now()), nil
}

// ListByGrantee returns everything granted to a user, newest first
func (s *Service) ListByGrantee(ctx context.Context, granteeID int64) ([]*Grant, error) {
	return s.repo.ListByGrantee(ctx, granteeID)
}
