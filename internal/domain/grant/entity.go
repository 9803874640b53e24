package grant

import (
	"database/sql"
	"time"
)

// Grant is a durable access grant from a granter (professional or property
// owner) to a grantee, scoped to a resource. Contact and vault grants are
// open-ended; buyer-vault grants carry the time-boxed read window seeded by
// the payment confirmation.
type Grant struct {
	ID              int64         `gorm:"column:id;primaryKey" json:"id"`
	Kind            string        `gorm:"column:kind;index:idx_grants_pair" json:"kind"`
	GranterID       int64         `gorm:"column:granter_id;index:idx_grants_pair" json:"granter_id"`
	GranteeID       int64         `gorm:"column:grantee_id;index:idx_grants_pair" json:"grantee_id"`
	PropertyID      sql.NullInt64 `gorm:"column:property_id" json:"property_id,omitempty"`
	VaultDocumentID sql.NullInt64 `gorm:"column:vault_document_id" json:"vault_document_id,omitempty"`
	ExpiresAt       sql.NullTime  `gorm:"column:expires_at" json:"expires_at,omitempty"`
	CreatedAt       time.Time     `gorm:"column:created_at" json:"created_at"`
}

func (Grant) TableName() string { return "access_grants" }

// Active reports whether the grant is currently usable
func (g *Grant) Active(now time.Time) bool {
	return !g.ExpiresAt.Valid || g.ExpiresAt.Time.After(now)
}
