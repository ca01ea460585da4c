package services

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that the referenced entity does not exist or does not
// belong to the caller.
var ErrNotFound = errors.New("not found")

// ErrNotMember reports that the caller is not a member of the target group.
var ErrNotMember = errors.New("not a group member")

// QuotaExceededError reports that a proof submission would exceed the
// member's weekly frequency.
type QuotaExceededError struct {
	Count int
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("weekly proof limit reached (%d of %d)", e.Count, e.Limit)
}
