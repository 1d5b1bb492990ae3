package hold

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/history"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
	"github.com/MrJamesThe3rd/consignd/internal/order"
)

type ExtendInput struct {
	OrderID uuid.UUID
	BuyerID uuid.UUID
	// Increment defaults to Policy.Extension.
	Increment time.Duration
	Actor     string
}

type ExtendResult struct {
	ExpiresAt time.Time
	Granted   time.Duration
	// Capped is set when the ceiling cut the grant short of the increment.
	Capped bool
}

func (r ExtendResult) Message() string {
	msg := "Added " + formatMinutes(r.Granted)
	if r.Capped {
		msg += " (maximum allowed)"
	}

	return msg
}

func formatMinutes(d time.Duration) string {
	if d == time.Minute {
		return "1 minute"
	}

	if d%time.Minute == 0 {
		return strconv.Itoa(int(d/time.Minute)) + " minutes"
	}

	return strconv.FormatFloat(d.Minutes(), 'f', 1, 64) + " minutes"
}

// Extend pushes the checkout expiry of a PENDING order forward, never past
// CreatedAt+Policy.Ceiling. Order and listing expiries are written together.
func (m *Manager) Extend(ctx context.Context, in ExtendInput) (ExtendResult, error) {
	inc := m.policy.increment(in.Increment)

	var result ExtendResult

	err := m.inTx(ctx, "extend hold", in.Actor, func(ctx context.Context, tx Tx, rec *recorder) error {
		result = ExtendResult{}

		o, err := tx.LockOrder(ctx, in.OrderID)
		if err != nil {
			return err
		}

		if o.BuyerID != in.BuyerID {
			return ErrNotFound
		}

		if o.Status != order.StatusPending {
			return ErrNotPending
		}

		ceilingAt := o.CreatedAt.Add(m.policy.Ceiling)
		if !rec.now.Before(ceilingAt) {
			return ErrLimitReached
		}

		if !rec.now.Before(o.CheckoutExpiresAt) {
			return ErrExpired
		}

		current := o.CheckoutExpiresAt
		if !current.Before(ceilingAt) {
			return ErrLimitReached
		}

		listings, err := lockAll(ctx, tx, o.ListingIDs())
		if err != nil {
			return err
		}

		for _, l := range listings {
			if l.Status != listing.StatusProcessing || !l.IsHeld {
				return fmt.Errorf("%w: %s is %s", ErrConflict, l.ItemID, l.Status)
			}
		}

		next := current.Add(inc)
		if next.After(ceilingAt) {
			next = ceilingAt
		}

		granted := next.Sub(current)

		o.CheckoutExpiresAt = next
		o.UpdatedAt = &rec.now

		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}

		for _, l := range listings {
			holdListing(l, next, rec.now)

			if err := tx.UpdateListing(ctx, l); err != nil {
				return err
			}

			ev := history.New(l.ID, history.TypeHoldExtended,
				"Hold extended",
				fmt.Sprintf("Checkout extended by %s, held until %s", formatMinutes(granted), next.Format(time.RFC3339)),
				map[string]any{
					"previous_until": current.Format(time.RFC3339),
					"held_until":     next.Format(time.RFC3339),
					"granted_sec":    int64(granted / time.Second),
				}).ForOrder(o.ID)
			if err := rec.record(ctx, ev); err != nil {
				return err
			}
		}

		result = ExtendResult{
			ExpiresAt: next,
			Granted:   granted,
			Capped:    granted < inc,
		}

		return nil
	})
	if err != nil {
		return ExtendResult{}, err
	}

	return result, nil
}
