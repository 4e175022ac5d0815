package core

import "errors"

// Domain error taxonomy. The HTTP layer maps these to transport statuses;
// inside the domain they are matched with errors.Is.
var (
	// ErrNotFound covers both true absence and records owned by another
	// user. The two cases must stay indistinguishable to callers.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition signals a scheduled-payment state change that
	// the lifecycle does not allow (settling a paid or cancelled payment,
	// cancelling a paid one). It is a caller conflict, not a server fault.
	ErrInvalidTransition = errors.New("invalid status transition")

	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidConfig rejects a dashboard configuration document: an
	// unknown key, a malformed value or a field out of range.
	ErrInvalidConfig = errors.New("invalid dashboard config")

	// ErrMissingOwner is a programming-contract violation: an aggregation
	// or lookup was attempted without an owner scope. Ledger sums must
	// never mix tenants, so this fails loudly instead of returning data.
	ErrMissingOwner = errors.New("owner id required")
)

// IsConflict reports whether err is a lifecycle conflict, the expected
// outcome when two callers race to settle or cancel the same payment.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}
