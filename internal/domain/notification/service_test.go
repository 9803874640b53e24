package notification

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"imovelhub/internal/domain/request"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, n *Notification) error {
	args := m.Called(ctx, n)
	if n != nil {
		n.ID = 555
	}
	return args.Error(0)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Notification), args.Error(1)
}

func (m *MockRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) MarkRead(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockRepository) MarkAllRead(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockMessageCounter struct {
	mock.Mock
}

func (m *MockMessageCounter) CountTotalUnread(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func TestCatalog_CoversEveryLifecycleEvent(t *testing.T) {
	kinds := []request.Kind{request.KindContact, request.KindVaultAccess, request.KindBuyerVaultAccess}

	for _, k := range kinds {
		for _, ev := range []event{eventCreated, eventAccepted, eventRejected} {
			entry, ok := lookup(k, ev)
			assert.True(t, ok, "missing catalog entry for %s/%s", k, ev)
			assert.NotEmpty(t, entry.Title)
			assert.NotEmpty(t, entry.Message(templateParams{}))
		}
	}

	// Only buyer-vault requests reach the paid transition.
	_, ok := lookup(request.KindBuyerVaultAccess, eventPaid)
	assert.True(t, ok)
	_, ok = lookup(request.KindContact, eventPaid)
	assert.False(t, ok)
}

func TestCatalog_RejectionCarriesReason(t *testing.T) {
	entry, _ := lookup(request.KindContact, eventRejected)

	msg := entry.Message(templateParams{ActorName: "Rui Martins", Reason: "Já vendido"})
	assert.Contains(t, msg, "Rui Martins")
	assert.Contains(t, msg, "Motivo: Já vendido")

	// Without a reason the message stays clean.
	msg = entry.Message(templateParams{ActorName: "Rui Martins"})
	assert.False(t, strings.Contains(msg, "Motivo"))
}

func TestCatalog_MissingActorFallsBack(t *testing.T) {
	entry, _ := lookup(request.KindContact, eventCreated)

	msg := entry.Message(templateParams{PropertyTitle: "T3 Lisboa"})
	assert.Contains(t, msg, "Um utilizador")
	assert.Contains(t, msg, "«T3 Lisboa»")
}

func TestService_RequestAccepted_DeepLinksConversation(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *Notification) bool {
		if n.Type != TypeContactAccepted || n.UserID != 7 {
			return false
		}
		meta := n.GetMetadata()
		return meta.RequestID == "req-1" && meta.ConversationID == "conv-1" && meta.ActorID == 3
	})).Return(nil)

	service := NewService(repo, nil, nil, nil)

	req := &request.AccessRequest{
		ID:          "req-1",
		Kind:        request.KindContact,
		RequesterID: 7,
		ResponderID: 3,
		PropertyID:  sql.NullInt64{Int64: 42, Valid: true},
	}
	err := service.RequestAccepted(context.Background(), 7, req, "Rui Martins", "conv-1")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_RequestRejected_StoresReason(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *Notification) bool {
		return n.Type == TypeVaultAccessRejected && strings.Contains(n.Message, "Motivo: Documentação incompleta")
	})).Return(nil)

	service := NewService(repo, nil, nil, nil)

	req := &request.AccessRequest{
		ID:              "req-2",
		Kind:            request.KindVaultAccess,
		RequesterID:     7,
		ResponderID:     3,
		RejectionReason: sql.NullString{String: "Documentação incompleta", Valid: true},
	}
	err := service.RequestRejected(context.Background(), 7, req, "Rui Martins")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_List_UnreadCountDegrades(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListByUser", mock.Anything, int64(7), 20, 0).Return([]*Notification{{ID: 1}}, nil)
	repo.On("CountUnread", mock.Anything, int64(7)).Return(0, errors.New("count failed"))

	service := NewService(repo, nil, nil, nil)

	list, unread, err := service.List(context.Background(), 7, 0, 0)

	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 0, unread)
}

func TestService_MarkAllRead(t *testing.T) {
	repo := new(MockRepository)
	repo.On("MarkAllRead", mock.Anything, int64(7)).Return(nil)

	service := NewService(repo, nil, nil, nil)

	assert.NoError(t, service.MarkAllRead(context.Background(), 7))
	repo.AssertExpectations(t)
}

func TestService_BadgeCount_SumsBothSources(t *testing.T) {
	repo := new(MockRepository)
	messages := new(MockMessageCounter)
	repo.On("CountUnread", mock.Anything, int64(7)).Return(3, nil)
	messages.On("CountTotalUnread", mock.Anything, int64(7)).Return(5, nil)

	service := NewService(repo, messages, nil, nil)

	total, err := service.BadgeCount(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, 8, total)
}

func TestService_BadgeCount_MessageFailureDegrades(t *testing.T) {
	repo := new(MockRepository)
	messages := new(MockMessageCounter)
	repo.On("CountUnread", mock.Anything, int64(7)).Return(3, nil)
	messages.On("CountTotalUnread", mock.Anything, int64(7)).Return(0, errors.New("chat store down"))

	service := NewService(repo, messages, nil, nil)

	total, err := service.BadgeCount(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, 3, total)
}
