package admin

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/history"
	"github.com/MrJamesThe3rd/consignd/internal/hold"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
	"github.com/MrJamesThe3rd/consignd/internal/sweep"
)

type listingResponse struct {
	ID         uuid.UUID      `json:"id"`
	ItemID     string         `json:"item_id"`
	SellerID   uuid.UUID      `json:"seller_id"`
	Title      string         `json:"title"`
	PriceCents int64          `json:"price_cents"`
	Status     listing.Status `json:"status"`
	IsHeld     bool           `json:"is_held"`
	HeldUntil  *time.Time     `json:"held_until"`
	CreatedAt  time.Time      `json:"created_at"`
}

func toListingResponse(l *listing.Listing) listingResponse {
	return listingResponse{
		ID:         l.ID,
		ItemID:     l.ItemID,
		SellerID:   l.SellerID,
		Title:      l.Title,
		PriceCents: l.PriceCents,
		Status:     l.Status,
		IsHeld:     l.IsHeld,
		HeldUntil:  l.HeldUntil,
		CreatedAt:  l.CreatedAt,
	}
}

type eventResponse struct {
	ID          uuid.UUID      `json:"id"`
	Type        history.Type   `json:"type"`
	OrderID     *uuid.UUID     `json:"order_id,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Actor       string         `json:"actor"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
}

func toEventResponses(events []history.Event) []eventResponse {
	resp := make([]eventResponse, len(events))
	for i, ev := range events {
		resp[i] = eventResponse{
			ID:          ev.ID,
			Type:        ev.Type,
			OrderID:     ev.OrderID,
			Title:       ev.Title,
			Description: ev.Description,
			Actor:       ev.Actor,
			Metadata:    ev.Metadata,
			CreatedAt:   ev.CreatedAt,
		}
	}

	return resp
}

type sweepResponse struct {
	ReleasedHolds   int `json:"released_holds"`
	CancelledOrders int `json:"cancelled_orders"`
	Failed          int `json:"failed"`
}

func toSweepResponse(r sweep.Result) sweepResponse {
	return sweepResponse{
		ReleasedHolds:   r.ReleasedHolds,
		CancelledOrders: r.CancelledOrders,
		Failed:          r.Failed,
	}
}

type reconcileResponse struct {
	Checked    int `json:"checked"`
	MarkedSold int `json:"marked_sold"`
	Released   int `json:"released"`
	Normalized int `json:"normalized"`
	Failed     int `json:"failed"`
}

func toReconcileResponse(r hold.ReconcileResult) reconcileResponse {
	return reconcileResponse{
		Checked:    r.Checked,
		MarkedSold: r.MarkedSold,
		Released:   r.Released,
		Normalized: r.Normalized,
		Failed:     r.Failed,
	}
}

type releaseResponse struct {
	ListingsReleased int  `json:"listings_released"`
	OrderCancelled   bool `json:"order_cancelled"`
}

type saleResponse struct {
	AlreadyPaid bool `json:"already_paid"`
	Revived     bool `json:"revived"`
}
