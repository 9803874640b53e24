package notification

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Type is the closed notification-type enum. Every lifecycle transition of
// an access request maps to exactly one entry via the catalog; adding a new
// request kind without extending the catalog is a compile-visible gap, not
// a silently missing notification.
type Type string

const (
	// New incoming requests (responder-facing)
	TypeContactRequest     Type = "contact_request"
	TypeVaultAccessRequest Type = "vault_access_request"
	TypeBuyerVaultRequest  Type = "buyer_vault_request"

	// Acceptance (requester-facing)
	TypeContactAccepted     Type = "contact_accepted"
	TypeVaultAccessApproved Type = "vault_access_approved"
	TypeBuyerVaultApproved  Type = "buyer_vault_approved"

	// Rejection (requester-facing)
	TypeContactRejected     Type = "contact_rejected"
	TypeVaultAccessRejected Type = "vault_access_rejected"
	TypeBuyerVaultRejected  Type = "buyer_vault_rejected"

	// Payment confirmation (buyer-facing)
	TypeBuyerVaultPaid Type = "buyer_vault_paid"
)

// Notification is a durable per-user notification record
type Notification struct {
	ID         int64           `gorm:"column:id;primaryKey" json:"id"`
	UserID     int64           `gorm:"column:user_id;index:idx_notifications_user_unread" json:"user_id"`
	Type       Type            `gorm:"column:type" json:"type"`
	Title      string          `gorm:"column:title" json:"title"`
	Message    string          `gorm:"column:message" json:"message"`
	Metadata   json.RawMessage `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	IsRead     bool            `gorm:"column:is_read;index:idx_notifications_user_unread" json:"is_read"`
	PropertyID sql.NullInt64   `gorm:"column:property_id" json:"property_id,omitempty"`
	CreatedAt  time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

// Metadata keys: originating request id, actor id, conversation id for
// deep-linking. A non-owning back-reference, not an enforced foreign key.
type Metadata struct {
	RequestID       string `json:"request_id,omitempty"`
	ActorID         int64  `json:"actor_id,omitempty"`
	ConversationID  string `json:"conversation_id,omitempty"`
	VaultDocumentID *int64 `json:"vault_document_id,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

// SetMetadata encodes metadata to JSON
func (n *Notification) SetMetadata(m *Metadata) error {
	if m == nil {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	n.Metadata = b
	return nil
}

// GetMetadata decodes metadata from JSON
func (n *Notification) GetMetadata() *Metadata {
	if len(n.Metadata) == 0 {
		return &Metadata{}
	}
	var m Metadata
	_ = json.Unmarshal(n.Metadata, &m)
	return &m
}
