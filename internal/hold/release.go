package hold

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/history"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
	"github.com/MrJamesThe3rd/consignd/internal/order"
)

// ReleaseInput names either an order or a single listing to release.
type ReleaseInput struct {
	OrderID   uuid.UUID
	ListingID uuid.UUID
	Reason    Reason
	Actor     string
	// OnlyIfExpired skips the release unless the hold has lapsed when
	// re-read under the row lock.
	OnlyIfExpired bool
}

type ReleaseResult struct {
	ListingsReleased int
	OrderCancelled   bool
}

// Release frees a hold. Releasing something that is already free, sold or
// no longer PENDING succeeds without changes.
func (m *Manager) Release(ctx context.Context, in ReleaseInput) (ReleaseResult, error) {
	if !in.Reason.Valid() {
		return ReleaseResult{}, fmt.Errorf("%w: unknown reason %q", ErrInvalidInput, in.Reason)
	}

	if in.OrderID != uuid.Nil {
		return m.releaseOrder(ctx, in)
	}

	if in.ListingID != uuid.Nil {
		return m.releaseListing(ctx, in)
	}

	return ReleaseResult{}, fmt.Errorf("%w: order or listing required", ErrInvalidInput)
}

func (m *Manager) releaseOrder(ctx context.Context, in ReleaseInput) (ReleaseResult, error) {
	var result ReleaseResult

	err := m.inTx(ctx, "release order", in.Actor, func(ctx context.Context, tx Tx, rec *recorder) error {
		result = ReleaseResult{}

		o, err := tx.LockOrder(ctx, in.OrderID)
		if err != nil {
			return err
		}

		if o.Status != order.StatusPending {
			return nil
		}

		if in.OnlyIfExpired && !lapsed(o.CheckoutExpiresAt, rec.now) {
			return nil
		}

		result, err = cancelOrder(ctx, tx, rec, o, in.Reason)

		return err
	})
	if err != nil {
		return ReleaseResult{}, err
	}

	return result, nil
}

func (m *Manager) releaseListing(ctx context.Context, in ReleaseInput) (ReleaseResult, error) {
	var result ReleaseResult

	err := m.inTx(ctx, "release listing", in.Actor, func(ctx context.Context, tx Tx, rec *recorder) error {
		result = ReleaseResult{}

		o, l, err := m.lockListingWithOrder(ctx, tx, in.ListingID)
		if err != nil {
			return err
		}

		if l.Status == listing.StatusSold {
			return nil
		}

		if o != nil {
			if in.OnlyIfExpired && !heldLapsed(l, rec.now) && !lapsed(o.CheckoutExpiresAt, rec.now) {
				return nil
			}

			result, err = cancelOrder(ctx, tx, rec, o, in.Reason)

			return err
		}

		if l.Status == listing.StatusActive && !l.IsHeld && l.HeldUntil == nil {
			return nil
		}

		if in.OnlyIfExpired && l.HeldUntil != nil && !lapsed(*l.HeldUntil, rec.now) {
			return nil
		}

		// A hold with no PENDING order behind it.
		if err := releaseOne(ctx, tx, rec, l, nil, in.Reason); err != nil {
			return err
		}

		result.ListingsReleased = 1

		return nil
	})
	if err != nil {
		return ReleaseResult{}, err
	}

	return result, nil
}

// lockListingWithOrder locks the PENDING order holding the listing (if any)
// and then the listing itself. errStale is returned when the order changed
// between the unlocked lookup and the locks, so the caller retries.
func (m *Manager) lockListingWithOrder(ctx context.Context, tx Tx, listingID uuid.UUID) (*order.Order, *listing.Listing, error) {
	orderID, found, err := m.repo.PendingOrderForListing(ctx, listingID)
	if err != nil {
		return nil, nil, err
	}

	var o *order.Order

	if found {
		o, err = tx.LockOrder(ctx, orderID)
		if err != nil {
			return nil, nil, err
		}
	}

	listings, err := lockAll(ctx, tx, []uuid.UUID{listingID})
	if err != nil {
		return nil, nil, err
	}

	current, stillFound, err := tx.PendingOrderForListing(ctx, listingID)
	if err != nil {
		return nil, nil, err
	}

	if stillFound != found || current != orderID {
		return nil, nil, errStale
	}

	if o != nil && o.Status != order.StatusPending {
		return nil, nil, errStale
	}

	return o, listings[0], nil
}

// cancelOrder frees every processing listing of the locked order and marks
// it CANCELLED. Listings already sold or released by another order are
// left alone.
func cancelOrder(ctx context.Context, tx Tx, rec *recorder, o *order.Order, reason Reason) (ReleaseResult, error) {
	var result ReleaseResult

	listings, err := tx.LockListings(ctx, o.ListingIDs())
	if err != nil {
		return result, err
	}

	for _, l := range listings {
		if l.Status != listing.StatusProcessing {
			continue
		}

		if err := releaseOne(ctx, tx, rec, l, &o.ID, reason); err != nil {
			return result, err
		}

		result.ListingsReleased++
	}

	o.Status = order.StatusCancelled
	o.UpdatedAt = &rec.now

	if err := tx.UpdateOrder(ctx, o); err != nil {
		return result, err
	}

	result.OrderCancelled = true

	return result, nil
}

func releaseOne(ctx context.Context, tx Tx, rec *recorder, l *listing.Listing, orderID *uuid.UUID, reason Reason) error {
	var previous string
	if l.HeldUntil != nil {
		previous = l.HeldUntil.Format(time.RFC3339)
	}

	freeListing(l, rec.now)

	if err := tx.UpdateListing(ctx, l); err != nil {
		return err
	}

	ev := history.New(l.ID, history.TypeHoldReleased,
		"Hold released",
		fmt.Sprintf("Hold released (%s)", reason),
		map[string]any{
			"reason":         string(reason),
			"previous_until": previous,
		})
	if orderID != nil {
		ev = ev.ForOrder(*orderID)
	}

	return rec.record(ctx, ev)
}

// lapsed reports whether an expiry is strictly in the past.
func lapsed(expiresAt, now time.Time) bool {
	return expiresAt.Before(now)
}

func heldLapsed(l *listing.Listing, now time.Time) bool {
	return l.HeldUntil != nil && lapsed(*l.HeldUntil, now)
}
