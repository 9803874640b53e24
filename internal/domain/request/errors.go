package request

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotFound        = errors.New("access request not found")
	ErrAlreadyDecided  = errors.New("access request already decided")
	ErrValidation      = errors.New("validation error")
)

// DuplicateRequestError is returned when a non-terminal request already
// exists for the same (requester, resource) pair. Carries the existing
// request's status so the caller can show it instead of a generic failure.
type DuplicateRequestError struct {
	Status Status
}

func (e *DuplicateRequestError) Error() string {
	return fmt.Sprintf("an active request already exists (status %s)", e.Status)
}

// CooldownActiveError is returned when a buyer-vault request is re-attempted
// within the re-request cooldown after a rejection.
type CooldownActiveError struct {
	HoursRemaining int
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("request cooldown active, %dh remaining", e.HoursRemaining)
}
