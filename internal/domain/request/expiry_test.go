package request

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemainingAt_ExpiringSoon(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	r := RemainingAt(now, now.Add(30*time.Minute))
	assert.False(t, r.Expired)
	assert.True(t, r.ExpiringSoon)
	assert.Equal(t, 30, r.Minutes)
}

func TestRemainingAt_ComfortableWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	r := RemainingAt(now, now.Add(13*time.Hour))
	assert.False(t, r.Expired)
	assert.False(t, r.ExpiringSoon)
}

func TestRemainingAt_ExactThresholdIsNotSoon(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	r := RemainingAt(now, now.Add(12*time.Hour))
	assert.False(t, r.ExpiringSoon)
}

func TestRemainingAt_JustPastDeadline(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	r := RemainingAt(now, now.Add(-time.Second))
	assert.True(t, r.Expired)
	assert.False(t, r.ExpiringSoon)
}

func TestRemaining_Format(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{2*24*60 + 5*60, "2d 5h"},
		{5*60 + 30, "5h 30m"},
		{45, "45m"},
		{0, "0m"},
		{-10, "0m"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Remaining{Minutes: tc.minutes}.Format())
	}
}

func TestEffectiveStatus_PendingPastWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	req := &AccessRequest{
		Status:    StatusPending,
		ExpiresAt: sql.NullTime{Time: now.Add(-time.Minute), Valid: true},
	}

	assert.Equal(t, StatusExpired, EffectiveStatus(req, now))
	// Derivation only; the stored status stays pending.
	assert.Equal(t, StatusPending, req.Status)
}

func TestEffectiveStatus_DecidedIsNeverOverridden(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	req := &AccessRequest{
		Status:    StatusAccepted,
		ExpiresAt: sql.NullTime{Time: now.Add(-time.Hour), Valid: true},
	}

	assert.Equal(t, StatusAccepted, EffectiveStatus(req, now))
}

func TestEffectiveStatus_NoDeadline(t *testing.T) {
	now := time.Now()
	req := &AccessRequest{Status: StatusPending}

	assert.Equal(t, StatusPending, EffectiveStatus(req, now))
}
