package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/checkout"
	"github.com/MrJamesThe3rd/consignd/internal/order"
)

type lineItemResponse struct {
	ListingID  uuid.UUID `json:"listing_id"`
	PriceCents int64     `json:"price_cents"`
}

type orderResponse struct {
	ID                uuid.UUID          `json:"id"`
	Status            order.Status       `json:"status"`
	TotalCents        int64              `json:"total_cents"`
	Items             []lineItemResponse `json:"items"`
	CheckoutURL       string             `json:"checkout_url,omitempty"`
	CheckoutExpiresAt time.Time          `json:"checkout_expires_at"`
	CreatedAt         time.Time          `json:"created_at"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]lineItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = lineItemResponse{ListingID: item.ListingID, PriceCents: item.PriceCents}
	}

	return orderResponse{
		ID:                o.ID,
		Status:            o.Status,
		TotalCents:        o.TotalCents,
		Items:             items,
		CheckoutURL:       o.CheckoutURL,
		CheckoutExpiresAt: o.CheckoutExpiresAt,
		CreatedAt:         o.CreatedAt,
	}
}

// timerResponse times are RFC 3339 in UTC; clients count down from
// checkout_expires_at corrected by server_time.
type timerResponse struct {
	OrderID           uuid.UUID    `json:"order_id"`
	Status            order.Status `json:"status"`
	CheckoutURL       string       `json:"checkout_url,omitempty"`
	CheckoutExpiresAt time.Time    `json:"checkout_expires_at"`
	ServerTime        time.Time    `json:"server_time"`
	RemainingSeconds  int64        `json:"remaining_seconds"`
	CanExtend         bool         `json:"can_extend"`
}

func toTimerResponse(t checkout.Timer) timerResponse {
	return timerResponse{
		OrderID:           t.OrderID,
		Status:            t.Status,
		CheckoutURL:       t.CheckoutURL,
		CheckoutExpiresAt: t.CheckoutExpiresAt.UTC(),
		ServerTime:        t.ServerTime.UTC(),
		RemainingSeconds:  int64(t.Remaining() / time.Second),
		CanExtend:         t.CanExtend,
	}
}

type extendResponse struct {
	CheckoutExpiresAt time.Time `json:"checkout_expires_at"`
	GrantedSeconds    int64     `json:"granted_seconds"`
	Capped            bool      `json:"capped"`
	Message           string    `json:"message"`
}
