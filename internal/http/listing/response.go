package listing

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/listing"
)

type listingResponse struct {
	ID         uuid.UUID      `json:"id"`
	ItemID     string         `json:"item_id"`
	Title      string         `json:"title"`
	PriceCents int64          `json:"price_cents"`
	Status     listing.Status `json:"status"`
	Available  bool           `json:"available"`
	HeldUntil  *time.Time     `json:"held_until,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func toResponse(l *listing.Listing) listingResponse {
	return listingResponse{
		ID:         l.ID,
		ItemID:     l.ItemID,
		Title:      l.Title,
		PriceCents: l.PriceCents,
		Status:     l.Status,
		Available:  l.Available(),
		HeldUntil:  l.HeldUntil,
		CreatedAt:  l.CreatedAt,
	}
}

func toResponseList(ls []*listing.Listing) []listingResponse {
	resp := make([]listingResponse, len(ls))
	for i, l := range ls {
		resp[i] = toResponse(l)
	}

	return resp
}
