package loans

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the lifecycle engine. Handlers translate
// these into HTTP status codes; anything else is a storage failure and is
// surfaced to callers as a generic message.
var (
	ErrLoanNotFound   = errors.New("loan not found")
	ErrAlreadyPaid    = errors.New("loan is already marked as paid")
	ErrOverpayment    = errors.New("payment amount exceeds remaining balance")
	ErrDeletePolicy   = errors.New("cannot delete paid loans; contact a super admin")
	ErrNoChanges      = errors.New("no changes to update")
	ErrTotalBelowPaid = errors.New("new total payable is below the amount already paid")
)

// ValidationError reports a user-correctable field problem. It carries no
// side effects: the engine rejects before touching storage.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
