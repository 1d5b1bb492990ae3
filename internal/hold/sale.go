package hold

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/history"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
	"github.com/MrJamesThe3rd/consignd/internal/order"
)

type SaleInput struct {
	OrderID          uuid.UUID
	PaymentReference string
	Actor            string
}

type SaleResult struct {
	// AlreadyPaid is set when the same payment was applied before.
	AlreadyPaid bool
	// Revived is set when a CANCELLED order was brought back by a late payment.
	Revived bool
}

// ConvertToSale applies a confirmed payment to its order. A payment that
// cannot be applied returns a *MismatchError after a reconciliation_mismatch
// event has been committed for every listing involved.
func (m *Manager) ConvertToSale(ctx context.Context, in SaleInput) (SaleResult, error) {
	if in.PaymentReference == "" {
		return SaleResult{}, fmt.Errorf("%w: payment reference required", ErrInvalidInput)
	}

	var (
		result   SaleResult
		mismatch *MismatchError
	)

	err := m.inTx(ctx, "convert to sale", in.Actor, func(ctx context.Context, tx Tx, rec *recorder) error {
		result = SaleResult{}
		mismatch = nil

		o, err := tx.LockOrder(ctx, in.OrderID)
		if err != nil {
			return err
		}

		listings, err := lockAll(ctx, tx, o.ListingIDs())
		if err != nil {
			return err
		}

		switch {
		case o.Status.IsPaid():
			if o.PaymentReference != in.PaymentReference {
				mismatch = newMismatch(o, listings, "order already paid with reference "+o.PaymentReference)
				return recordMismatch(ctx, rec, o, listings, in.PaymentReference, mismatch.Reason)
			}

			result.AlreadyPaid = true

			return healSold(ctx, tx, rec, o, listings)

		case o.Status == order.StatusPending:
			if sold := soldListings(listings); len(sold) > 0 {
				mismatch = newMismatch(o, sold, "listing already sold")
				return recordMismatch(ctx, rec, o, sold, in.PaymentReference, mismatch.Reason)
			}

			return sellOrder(ctx, tx, rec, o, listings, in.PaymentReference)

		case o.Status == order.StatusCancelled:
			for _, l := range listings {
				if !l.Available() {
					mismatch = newMismatch(o, listings, "payment arrived after the hold was released and an item is no longer available")
					return recordMismatch(ctx, rec, o, listings, in.PaymentReference, mismatch.Reason)
				}
			}

			for _, l := range listings {
				ev := history.New(l.ID, history.TypeReconciled,
					"Late payment applied",
					"Payment confirmed after the checkout was released; order revived",
					map[string]any{
						"payment_reference": in.PaymentReference,
						"previous_status":   string(order.StatusCancelled),
					}).ForOrder(o.ID)
				if err := rec.record(ctx, ev); err != nil {
					return err
				}
			}

			result.Revived = true

			return sellOrder(ctx, tx, rec, o, listings, in.PaymentReference)

		default:
			mismatch = newMismatch(o, listings, "order is "+string(o.Status))
			return recordMismatch(ctx, rec, o, listings, in.PaymentReference, mismatch.Reason)
		}
	})
	if err != nil {
		return SaleResult{}, err
	}

	if mismatch != nil {
		return result, mismatch
	}

	return result, nil
}

func sellOrder(ctx context.Context, tx Tx, rec *recorder, o *order.Order, listings []*listing.Listing, ref string) error {
	o.Status = order.StatusPaid
	o.PaymentReference = ref
	o.UpdatedAt = &rec.now

	if err := tx.UpdateOrder(ctx, o); err != nil {
		return err
	}

	for _, l := range listings {
		sellListing(l, rec.now)

		if err := tx.UpdateListing(ctx, l); err != nil {
			return err
		}

		ev := history.New(l.ID, history.TypePurchased,
			"Purchased",
			fmt.Sprintf("Sold for %d cents", l.PriceCents),
			map[string]any{
				"payment_reference": ref,
				"price_cents":       l.PriceCents,
			}).ForOrder(o.ID)
		if err := rec.record(ctx, ev); err != nil {
			return err
		}
	}

	return nil
}

// healSold marks any listing of a paid order that is not yet sold.
func healSold(ctx context.Context, tx Tx, rec *recorder, o *order.Order, listings []*listing.Listing) error {
	for _, l := range listings {
		if l.Status == listing.StatusSold && l.IsHeld && l.HeldUntil == nil {
			continue
		}

		previous := l.Status

		sellListing(l, rec.now)

		if err := tx.UpdateListing(ctx, l); err != nil {
			return err
		}

		ev := history.New(l.ID, history.TypeReconciled,
			"Marked sold",
			"Listing belonged to a paid order but was not sold",
			map[string]any{
				"previous_status":   string(previous),
				"payment_reference": o.PaymentReference,
			}).ForOrder(o.ID)
		if err := rec.record(ctx, ev); err != nil {
			return err
		}
	}

	return nil
}

func soldListings(listings []*listing.Listing) []*listing.Listing {
	var sold []*listing.Listing

	for _, l := range listings {
		if l.Status == listing.StatusSold {
			sold = append(sold, l)
		}
	}

	return sold
}

func newMismatch(o *order.Order, listings []*listing.Listing, reason string) *MismatchError {
	items := make([]string, 0, len(listings))
	for _, l := range listings {
		items = append(items, l.ItemID)
	}

	return &MismatchError{OrderID: o.ID, Listings: items, Reason: reason}
}

func recordMismatch(ctx context.Context, rec *recorder, o *order.Order, listings []*listing.Listing, ref, reason string) error {
	for _, l := range listings {
		ev := history.New(l.ID, history.TypeReconciliationMismatch,
			"Payment could not be applied",
			reason,
			map[string]any{
				"payment_reference": ref,
				"order_status":      string(o.Status),
				"listing_status":    string(l.Status),
			}).ForOrder(o.ID)
		if err := rec.record(ctx, ev); err != nil {
			return err
		}
	}

	return nil
}
