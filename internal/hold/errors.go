package hold

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrConflict means a listing is already held or sold.
	ErrConflict = errors.New("listing not available")
	// ErrNotFound means a referenced listing or order does not exist.
	ErrNotFound = errors.New("not found")
	// ErrLimitReached means the checkout window cannot be extended any further.
	ErrLimitReached = errors.New("maximum checkout time reached")
	// ErrExpired means the checkout window already lapsed.
	ErrExpired = errors.New("checkout session expired")
	// ErrNotPending means the order left the PENDING state.
	ErrNotPending = errors.New("order no longer pending")
	// ErrReconciliationMismatch means payment state and listing state disagree.
	ErrReconciliationMismatch = errors.New("reconciliation mismatch")
	// ErrTransient wraps store failures that are worth retrying.
	ErrTransient = errors.New("transient store failure")
	// ErrInvalidInput means the request itself is malformed.
	ErrInvalidInput = errors.New("invalid input")
)

// errStale signals that a lookup done before locking no longer matches the locked rows.
var errStale = errors.New("stale lookup")

// MismatchError details a payment that could not be applied to its listings.
type MismatchError struct {
	OrderID  uuid.UUID
	Listings []string
	Reason   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: order %s (%s): %s",
		ErrReconciliationMismatch, e.OrderID, strings.Join(e.Listings, ", "), e.Reason)
}

func (e *MismatchError) Unwrap() error {
	return ErrReconciliationMismatch
}
