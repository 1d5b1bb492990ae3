// Package history is the append-only audit trail of listing state transitions.
package history

import (
	"time"

	"github.com/google/uuid"
)

// Type names a state transition.
type Type string

const (
	TypeHoldAcquired           Type = "hold_acquired"
	TypeHoldExtended           Type = "hold_extended"
	TypeHoldReleased           Type = "hold_released"
	TypePurchased              Type = "purchased"
	TypeReconciled             Type = "reconciled"
	TypeReconciliationMismatch Type = "reconciliation_mismatch"
)

// Event is one immutable history record.
type Event struct {
	ID          uuid.UUID
	ListingID   uuid.UUID
	OrderID     *uuid.UUID
	Type        Type
	Title       string
	Description string
	Actor       string
	Metadata    map[string]any
	CreatedAt   time.Time
}

// New builds an event with a fresh ID. Metadata may be nil.
func New(listingID uuid.UUID, typ Type, title, description string, metadata map[string]any) Event {
	if metadata == nil {
		metadata = map[string]any{}
	}

	return Event{
		ID:          uuid.New(),
		ListingID:   listingID,
		Type:        typ,
		Title:       title,
		Description: description,
		Metadata:    metadata,
	}
}

// ForOrder sets the order reference and records it in the metadata.
func (e Event) ForOrder(orderID uuid.UUID) Event {
	id := orderID
	e.OrderID = &id
	e.Metadata["order_id"] = orderID.String()

	return e
}

// By sets the actor and records it in the metadata.
func (e Event) By(actor string) Event {
	e.Actor = actor
	e.Metadata["actor"] = actor

	return e
}

// At stamps the event time.
func (e Event) At(t time.Time) Event {
	e.CreatedAt = t

	return e
}
