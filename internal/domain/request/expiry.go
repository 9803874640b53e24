package request

import (
	"fmt"
	"time"
)

// expiringSoonWindow is the threshold below which a pending request is shown
// with urgent styling. Callers must reuse these exact thresholds or lists
// flap between urgent and normal rendering.
const expiringSoonWindow = 12 * time.Hour

// Remaining describes how much of a request's decision window is left
type Remaining struct {
	Minutes      int  `json:"minutes"`
	ExpiringSoon bool `json:"is_expiring_soon"`
	Expired      bool `json:"is_expired"`
}

// RemainingAt computes the decision window left at a given instant.
// Pure function of now and expiresAt.
func RemainingAt(now, expiresAt time.Time) Remaining {
	left := expiresAt.Sub(now)
	minutes := int(left.Minutes())
	if left <= 0 {
		return Remaining{Minutes: minutes, Expired: true}
	}
	return Remaining{
		Minutes:      minutes,
		ExpiringSoon: left < expiringSoonWindow,
	}
}

// Format renders the remaining window: "2d 5h" above a day, "5h 30m" above
// an hour, otherwise "45m". Expired windows render as "0m".
func (r Remaining) Format() string {
	if r.Minutes <= 0 {
		return "0m"
	}
	if r.Minutes >= 24*60 {
		days := r.Minutes / (24 * 60)
		hours := (r.Minutes % (24 * 60)) / 60
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if r.Minutes >= 60 {
		return fmt.Sprintf("%dh %dm", r.Minutes/60, r.Minutes%60)
	}
	return fmt.Sprintf("%dm", r.Minutes)
}

// EffectiveStatus derives the status shown to responders: a pending request
// past its window renders as expired. The stored status is not rewritten
// here; only the decision engine or the maintenance sweep persists expired.
func EffectiveStatus(r *AccessRequest, now time.Time) Status {
	if r.Status == StatusPending && r.ExpiresAt.Valid {
		if RemainingAt(now, r.ExpiresAt.Time).Expired {
			return StatusExpired
		}
	}
	return r.Status
}
