package request

import "time"

// CreateRequestDTO is the requester's submission body. responder_id is the
// professional or property owner derived by the client from the resource.
type CreateRequestDTO struct {
	Kind            Kind   `json:"kind" binding:"required"`
	ResponderID     int64  `json:"responder_id" binding:"required"`
	PropertyID      *int64 `json:"property_id"`
	VaultDocumentID *int64 `json:"vault_document_id"`
	PropertyTitle   string `json:"property_title"`
	Message         string `json:"message"`
}

// DecideRequestDTO carries an optional rejection reason
type DecideRequestDTO struct {
	Reason string `json:"reason"`
}

// RequestResponse decorates a stored row with the view-level derivations:
// effective status and the remaining decision window.
type RequestResponse struct {
	ID              string     `json:"id"`
	Kind            Kind       `json:"kind"`
	RequesterID     int64      `json:"requester_id"`
	ResponderID     int64      `json:"responder_id"`
	PropertyID      *int64     `json:"property_id,omitempty"`
	VaultDocumentID *int64     `json:"vault_document_id,omitempty"`
	PropertyTitle   string     `json:"property_title,omitempty"`
	Message         string     `json:"message,omitempty"`
	Status          Status     `json:"status"`
	EffectiveStatus Status     `json:"effective_status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	Remaining       *Remaining `json:"remaining,omitempty"`
	RemainingLabel  string     `json:"remaining_label,omitempty"`
}

// ToResponse converts a row for presentation at a given instant
func ToResponse(r *AccessRequest, now time.Time) *RequestResponse {
	out := &RequestResponse{
		ID:              r.ID,
		Kind:            r.Kind,
		RequesterID:     r.RequesterID,
		ResponderID:     r.ResponderID,
		PropertyTitle:   r.PropertyTitle.String,
		Message:         r.Message.String,
		Status:          r.Status,
		EffectiveStatus: EffectiveStatus(r, now),
		RejectionReason: r.RejectionReason.String,
		CreatedAt:       r.CreatedAt,
	}
	if r.PropertyID.Valid {
		v := r.PropertyID.Int64
		out.PropertyID = &v
	}
	if r.VaultDocumentID.Valid {
		v := r.VaultDocumentID.Int64
		out.VaultDocumentID = &v
	}
	if r.DecidedAt.Valid {
		t := r.DecidedAt.Time
		out.DecidedAt = &t
	}
	if r.ExpiresAt.Valid {
		t := r.ExpiresAt.Time
		out.ExpiresAt = &t
		if r.Status == StatusPending {
			rem := RemainingAt(now, r.ExpiresAt.Time)
			out.Remaining = &rem
			out.RemainingLabel = rem.Format()
		}
	}
	return out
}
