package hold

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/history"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
	"github.com/MrJamesThe3rd/consignd/internal/order"
)

type AcquireInput struct {
	ListingIDs []uuid.UUID
	BuyerID    uuid.UUID
	// Window is the initial checkout window. Zero uses Policy.BaseWindow.
	Window time.Duration
	Actor  string
}

// lapsedHolds is returned from the acquire transaction when some listings
// are held past held_until and have to be released first.
type lapsedHolds []uuid.UUID

func (e lapsedHolds) Error() string {
	return fmt.Sprintf("%d listings held past expiry", len(e))
}

// Acquire holds every listing for the buyer and creates the PENDING order.
// It fails with ErrConflict when any listing is already held or sold; the
// caller should refresh and tell the buyer the item is gone, not retry.
// Holds that already lapsed are released first, without waiting for a sweep.
func (m *Manager) Acquire(ctx context.Context, in AcquireInput) (*order.Order, error) {
	ids := uniqueSorted(in.ListingIDs)
	if len(ids) == 0 || in.BuyerID == uuid.Nil {
		return nil, ErrInvalidInput
	}

	o, err := m.acquire(ctx, ids, in)

	var pending lapsedHolds
	if !errors.As(err, &pending) {
		return o, err
	}

	// Releasing goes through the order row first, which is not possible
	// once the listings are locked, so it runs outside the transaction.
	for _, id := range pending {
		_, err := m.Release(ctx, ReleaseInput{
			ListingID:     id,
			Reason:        ReasonExpiredTimer,
			Actor:         ActorSystem,
			OnlyIfExpired: true,
		})
		if err != nil {
			return nil, err
		}
	}

	o, err = m.acquire(ctx, ids, in)
	if errors.As(err, &pending) {
		return nil, fmt.Errorf("%w: hold still pending release", ErrConflict)
	}

	return o, err
}

func (m *Manager) acquire(ctx context.Context, ids []uuid.UUID, in AcquireInput) (*order.Order, error) {
	window := m.policy.window(in.Window)

	var result *order.Order

	err := m.inTx(ctx, "acquire hold", in.Actor, func(ctx context.Context, tx Tx, rec *recorder) error {
		result = nil

		listings, err := lockAll(ctx, tx, ids)
		if err != nil {
			return err
		}

		var expired lapsedHolds

		for _, l := range listings {
			if l.Status == listing.StatusProcessing && heldLapsed(l, rec.now) {
				expired = append(expired, l.ID)
				continue
			}

			if !l.Available() {
				return fmt.Errorf("%w: %s is %s", ErrConflict, l.ItemID, l.Status)
			}
		}

		if len(expired) > 0 {
			return expired
		}

		until := rec.now.Add(window)
		o := &order.Order{
			ID:                uuid.New(),
			BuyerID:           in.BuyerID,
			Status:            order.StatusPending,
			CheckoutExpiresAt: until,
			CreatedAt:         rec.now,
		}

		for _, l := range listings {
			o.Items = append(o.Items, order.LineItem{
				ID:         uuid.New(),
				OrderID:    o.ID,
				ListingID:  l.ID,
				PriceCents: l.PriceCents,
			})
			o.TotalCents += l.PriceCents
		}

		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}

		for _, l := range listings {
			holdListing(l, until, rec.now)

			if err := tx.UpdateListing(ctx, l); err != nil {
				return err
			}

			ev := history.New(l.ID, history.TypeHoldAcquired,
				"Hold acquired",
				fmt.Sprintf("Checkout started, held until %s", until.Format(time.RFC3339)),
				map[string]any{
					"buyer_id":   in.BuyerID.String(),
					"held_until": until.Format(time.RFC3339),
				}).ForOrder(o.ID)
			if err := rec.record(ctx, ev); err != nil {
				return err
			}
		}

		result = o

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// AttachCheckoutSession stores the payment provider session on a PENDING order.
func (m *Manager) AttachCheckoutSession(ctx context.Context, orderID uuid.UUID, sessionID, url string) error {
	if sessionID == "" {
		return ErrInvalidInput
	}

	return m.inTx(ctx, "attach checkout session", ActorSystem, func(ctx context.Context, tx Tx, rec *recorder) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}

		if o.Status != order.StatusPending {
			return ErrNotPending
		}

		o.CheckoutSessionID = sessionID
		o.CheckoutURL = url
		o.UpdatedAt = &rec.now

		return tx.UpdateOrder(ctx, o)
	})
}
