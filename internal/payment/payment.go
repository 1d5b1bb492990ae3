// Package payment talks to the hosted checkout provider.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUnavailable means the provider could not be reached or failed; retry later.
	ErrUnavailable = errors.New("payment provider unavailable")
	ErrNotFound    = errors.New("checkout session not found")
)

type SessionStatus string

const (
	SessionOpen     SessionStatus = "open"
	SessionComplete SessionStatus = "complete"
	SessionExpired  SessionStatus = "expired"
)

type Session struct {
	ID               string        `json:"id"`
	URL              string        `json:"url"`
	Status           SessionStatus `json:"status"`
	PaymentReference string        `json:"payment_reference,omitempty"`
}

type SessionItem struct {
	ListingID   uuid.UUID `json:"listing_id"`
	Title       string    `json:"title"`
	AmountCents int64     `json:"amount_cents"`
}

type SessionRequest struct {
	OrderID     uuid.UUID     `json:"client_reference_id"`
	AmountCents int64         `json:"amount_cents"`
	Currency    string        `json:"currency"`
	Items       []SessionItem `json:"line_items"`
	ExpiresAt   time.Time     `json:"expires_at"`
	SuccessURL  string        `json:"success_url"`
	CancelURL   string        `json:"cancel_url"`
}

//go:generate mockgen -source=payment.go -destination=provider_mock.go -package=payment
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	RetrieveSession(ctx context.Context, id string) (*Session, error)
}

type EventType string

const (
	EventSessionCompleted EventType = "checkout.session.completed"
	EventSessionExpired   EventType = "checkout.session.expired"
	EventPaymentFailed    EventType = "payment.failed"
)

// Event is a webhook notification. Providers deliver at least once and in
// no particular order.
type Event struct {
	ID               string
	Type             EventType
	SessionID        string
	PaymentReference string
	OrderID          uuid.UUID
}
