package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("order not found")

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusPaid       Status = "PAID"
	StatusCancelled  Status = "CANCELLED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusDisputed   Status = "DISPUTED"
	StatusFinalized  Status = "FINALIZED"
	StatusRefunded   Status = "REFUNDED"
)

// IsTerminal reports whether no further business transition is possible.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusFinalized, StatusRefunded:
		return true
	}

	return false
}

// IsPaid reports whether payment was captured and not given back.
func (s Status) IsPaid() bool {
	switch s {
	case StatusPaid, StatusProcessing, StatusShipped, StatusDelivered, StatusDisputed, StatusFinalized:
		return true
	}

	return false
}

// Order is a buyer's attempt to purchase one or more listings.
type Order struct {
	ID                uuid.UUID
	BuyerID           uuid.UUID
	Status            Status
	Items             []LineItem
	TotalCents        int64
	CheckoutSessionID string
	CheckoutURL       string
	PaymentReference  string
	CheckoutExpiresAt time.Time
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

// LineItem ties an order to one listing at the price seen at checkout.
type LineItem struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	ListingID  uuid.UUID
	PriceCents int64
}

func (o *Order) ListingIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(o.Items))
	for i, item := range o.Items {
		ids[i] = item.ListingID
	}

	return ids
}

// Contains reports whether the order has a line item for the listing.
func (o *Order) Contains(listingID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.ListingID == listingID {
			return true
		}
	}

	return false
}
