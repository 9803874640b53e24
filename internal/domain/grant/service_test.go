package grant

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, g *Grant) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockRepository) Find(ctx context.Context, kind string, granterID, granteeID int64, propertyID, vaultDocumentID *int64) (*Grant, error) {
	args := m.Called(ctx, kind, granterID, granteeID, propertyID, vaultDocumentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Grant), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, g *Grant) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockRepository) ListByGrantee(ctx context.Context, granteeID int64) ([]*Grant, error) {
	args := m.Called(ctx, granteeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Grant), args.Error(1)
}

func TestService_Ensure_CreatesNewGrant(t *testing.T) {
	repo := new(MockRepository)
	propID := int64(42)
	repo.On("Find", mock.Anything, "contact", int64(3), int64(7), &propID, (*int64)(nil)).Return(nil, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(g *Grant) bool {
		return g.Kind == "contact" && g.GranterID == 3 && g.GranteeID == 7 &&
			g.PropertyID.Int64 == 42 && !g.ExpiresAt.Valid
	})).Return(nil)

	service := NewService(repo)

	err := service.Ensure(context.Background(), "contact", 3, 7, &propID, nil, nil)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Ensure_ExistingGrantIsReused(t *testing.T) {
	repo := new(MockRepository)
	existing := &Grant{ID: 1, Kind: "contact", GranterID: 3, GranteeID: 7}
	repo.On("Find", mock.Anything, "contact", int64(3), int64(7), (*int64)(nil), (*int64)(nil)).Return(existing, nil)

	service := NewService(repo)

	err := service.Ensure(context.Background(), "contact", 3, 7, nil, nil, nil)

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestService_Ensure_ExtendsShorterWindow(t *testing.T) {
	repo := new(MockRepository)
	docID := int64(9)
	existing := &Grant{
		ID:        1,
		Kind:      "buyer_vault_access",
		GranterID: 3,
		GranteeID: 7,
		ExpiresAt: sql.NullTime{Time: time.Now().Add(24 * time.Hour), Valid: true},
	}
	repo.On("Find", mock.Anything, "buyer_vault_access", int64(3), int64(7), (*int64)(nil), &docID).Return(existing, nil)
	newExpiry := time.Now().Add(720 * time.Hour)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(g *Grant) bool {
		return g.ID == 1 && g.ExpiresAt.Valid && g.ExpiresAt.Time.Equal(newExpiry)
	})).Return(nil)

	service := NewService(repo)

	err := service.Ensure(context.Background(), "buyer_vault_access", 3, 7, nil, &docID, &newExpiry)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Has_ExpiredGrantIsInactive(t *testing.T) {
	repo := new(MockRepository)
	expired := &Grant{
		ID:        1,
		Kind:      "buyer_vault_access",
		ExpiresAt: sql.NullTime{Time: time.Now().Add(-time.Hour), Valid: true},
	}
	repo.On("Find", mock.Anything, "buyer_vault_access", int64(3), int64(7), (*int64)(nil), (*int64)(nil)).Return(expired, nil)

	service := NewService(repo)

	ok, err := service.Has(context.Background(), "buyer_vault_access", 3, 7, nil, nil)

	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestService_Has_OpenEndedGrantIsActive(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Find", mock.Anything, "contact", int64(3), int64(7), (*int64)(nil), (*int64)(nil)).
		Return(&Grant{ID: 1, Kind: "contact"}, nil)

	service := NewService(repo)

	ok, err := service.Has(context.Background(), "contact", 3, 7, nil, nil)

	assert.NoError(t, err)
	assert.True(t, ok)
}
