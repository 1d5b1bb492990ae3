package holdtest

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/history"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
	"github.com/MrJamesThe3rd/consignd/internal/order"
)

// The methods below let one Store back the listing, order and history
// services and the webhook event log in handler tests.

func (s *Store) CreateListing(_ context.Context, l *listing.Listing) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data.listings {
		if existing.ItemID == l.ItemID {
			return listing.ErrDuplicateItemID
		}
	}

	l.ID = uuid.New()
	l.Status = listing.StatusActive
	l.IsHeld = false
	l.HeldUntil = nil
	l.CreatedAt = time.Now().UTC()

	s.data.listings[l.ID] = cloneListing(l)

	return nil
}

func (s *Store) GetListing(_ context.Context, id uuid.UUID) (*listing.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.data.listings[id]
	if !ok {
		return nil, listing.ErrNotFound
	}

	return cloneListing(l), nil
}

func (s *Store) GetListingByItemID(_ context.Context, itemID string) (*listing.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.data.listings {
		if l.ItemID == itemID {
			return cloneListing(l), nil
		}
	}

	return nil, listing.ErrNotFound
}

func (s *Store) ListListings(_ context.Context, filter listing.ListFilter) ([]*listing.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*listing.Listing

	for _, l := range s.data.listings {
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}

		out = append(out, cloneListing(l))
	}

	slices.SortFunc(out, func(a, b *listing.Listing) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}

func (s *Store) GetOrder(_ context.Context, id uuid.UUID) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.data.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}

	return cloneOrder(o), nil
}

func (s *Store) GetOrderBySession(_ context.Context, sessionID string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.data.orders {
		if sessionID != "" && o.CheckoutSessionID == sessionID {
			return cloneOrder(o), nil
		}
	}

	return nil, order.ErrNotFound
}

func (s *Store) ListOrdersByBuyer(_ context.Context, buyerID uuid.UUID) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*order.Order

	for _, o := range s.data.orders {
		if o.BuyerID == buyerID {
			out = append(out, cloneOrder(o))
		}
	}

	slices.SortFunc(out, func(a, b *order.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return out, nil
}

func (s *Store) ListByListing(_ context.Context, listingID uuid.UUID) ([]history.Event, error) {
	return s.History(listingID), nil
}

func (s *Store) Processed(_ context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.processed[eventID]

	return ok, nil
}

func (s *Store) MarkProcessed(_ context.Context, eventID, eventType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.processed[eventID] = eventType

	return nil
}
