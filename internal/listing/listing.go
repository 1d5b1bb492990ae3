package listing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("listing not found")
	ErrDuplicateItemID = errors.New("item id already in use")
)

// ErrInvariant is wrapped by CheckInvariant when the hold fields disagree with the status.
var ErrInvariant = errors.New("listing invariant violated")

// Status represents the sale state of a listing.
type Status string

const (
	StatusActive     Status = "active"
	StatusProcessing Status = "processing"
	StatusSold       Status = "sold"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusProcessing, StatusSold:
		return true
	}

	return false
}

// Listing represents a consigned item offered for sale.
type Listing struct {
	ID         uuid.UUID
	ItemID     string // Human-shareable identifier, e.g. "L001"
	SellerID   uuid.UUID
	Title      string
	PriceCents int64
	Status     Status
	IsHeld     bool
	HeldUntil  *time.Time
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// Available reports whether a buyer may start a checkout for the listing.
func (l Listing) Available() bool {
	return l.Status == StatusActive && !l.IsHeld
}

// CheckInvariant verifies that IsHeld and HeldUntil agree with Status.
//
//	active     => !IsHeld && HeldUntil == nil
//	processing =>  IsHeld && HeldUntil != nil
//	sold       =>  IsHeld && HeldUntil == nil
func (l Listing) CheckInvariant() error {
	switch l.Status {
	case StatusActive:
		if l.IsHeld || l.HeldUntil != nil {
			return fmt.Errorf("%w: %s is active but held", ErrInvariant, l.ItemID)
		}
	case StatusProcessing:
		if !l.IsHeld || l.HeldUntil == nil {
			return fmt.Errorf("%w: %s is processing without a hold", ErrInvariant, l.ItemID)
		}
	case StatusSold:
		if !l.IsHeld || l.HeldUntil != nil {
			return fmt.Errorf("%w: %s is sold with an open hold", ErrInvariant, l.ItemID)
		}
	default:
		return fmt.Errorf("%w: %s has unknown status %q", ErrInvariant, l.ItemID, l.Status)
	}

	return nil
}
