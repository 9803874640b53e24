package request

import (
	"database/sql"
	"time"
)

// Kind discriminates the three access-request flavours sharing one lifecycle
type Kind string

const (
	KindContact          Kind = "contact"
	KindVaultAccess      Kind = "vault_access"
	KindBuyerVaultAccess Kind = "buyer_vault_access"
)

func (k Kind) Valid() bool {
	switch k {
	case KindContact, KindVaultAccess, KindBuyerVaultAccess:
		return true
	}
	return false
}

// Status of an access request. Once it leaves pending it is immutable,
// except approved -> paid for buyer-vault requests (payment webhook only).
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusApproved Status = "approved" // buyer-vault: accepted, awaiting payment
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
	StatusPaid     Status = "paid"
)

// AccessRequest is a pending/decided request for contact or vault access
type AccessRequest struct {
	ID              string         `gorm:"column:id;primaryKey" json:"id"`
	Kind            Kind           `gorm:"column:kind;index:idx_requests_requester" json:"kind"`
	RequesterID     int64          `gorm:"column:requester_id;index:idx_requests_requester" json:"requester_id"`
	ResponderID     int64          `gorm:"column:responder_id;index" json:"responder_id"`
	PropertyID      sql.NullInt64  `gorm:"column:property_id" json:"property_id,omitempty"`
	VaultDocumentID sql.NullInt64  `gorm:"column:vault_document_id" json:"vault_document_id,omitempty"`
	PropertyTitle   sql.NullString `gorm:"column:property_title" json:"property_title,omitempty"`
	Message         sql.NullString `gorm:"column:message" json:"message,omitempty"`
	Status          Status         `gorm:"column:status" json:"status"`
	RejectionReason sql.NullString `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	AuditIP         sql.NullString `gorm:"column:audit_ip" json:"-"`
	CreatedAt       time.Time      `gorm:"column:created_at" json:"created_at"`
	DecidedAt       sql.NullTime   `gorm:"column:decided_at" json:"decided_at,omitempty"`
	ExpiresAt       sql.NullTime   `gorm:"column:expires_at" json:"expires_at,omitempty"`
}

func (AccessRequest) TableName() string { return "access_requests" }

// Terminal reports whether the stored status admits no further user decision.
// approved is non-terminal: it still awaits the payment confirmation.
func (r *AccessRequest) Terminal() bool {
	switch r.Status {
	case StatusAccepted, StatusRejected, StatusExpired, StatusPaid:
		return true
	}
	return false
}

func (r *AccessRequest) propertyIDPtr() *int64 {
	if !r.PropertyID.Valid {
		return nil
	}
	v := r.PropertyID.Int64
	return &v
}
