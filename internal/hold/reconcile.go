package hold

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/history"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
)

type ReconcileResult struct {
	Checked    int
	MarkedSold int
	Released   int
	Normalized int
	Failed     int
}

type reconcileOutcome int

const (
	reconcileUnchanged reconcileOutcome = iota
	reconcileSold
	reconcileReleased
	reconcileNormalized
)

// Reconcile re-derives the state of every listing the repository reports
// as inconsistent from the orders that reference it:
//
//	paid order       -> sold (a competing PENDING order is cancelled)
//	PENDING order    -> processing, held until the order expiry
//	neither          -> active
//
// Sold listings are never reopened. A failing listing is logged and counted.
func (m *Manager) Reconcile(ctx context.Context, actor string) (ReconcileResult, error) {
	var result ReconcileResult

	ids, err := m.repo.InconsistentListings(ctx, m.policy.ReconcileBatch)
	if err != nil {
		return result, fmt.Errorf("finding inconsistent listings: %w", err)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.Checked++

		outcome, err := m.reconcileListing(ctx, id, actor)
		if err != nil {
			result.Failed++
			slog.Error("failed to reconcile listing", "listing_id", id, "error", err)

			continue
		}

		switch outcome {
		case reconcileSold:
			result.MarkedSold++
		case reconcileReleased:
			result.Released++
		case reconcileNormalized:
			result.Normalized++
		}
	}

	return result, nil
}

func (m *Manager) reconcileListing(ctx context.Context, listingID uuid.UUID, actor string) (reconcileOutcome, error) {
	var outcome reconcileOutcome

	err := m.inTx(ctx, "reconcile listing", actor, func(ctx context.Context, tx Tx, rec *recorder) error {
		outcome = reconcileUnchanged

		pending, l, err := m.lockListingWithOrder(ctx, tx, listingID)
		if err != nil {
			return err
		}

		paidID, paid, err := tx.PaidOrderForListing(ctx, listingID)
		if err != nil {
			return err
		}

		switch {
		case l.Status == listing.StatusSold:
			if pending != nil {
				if _, err := cancelOrder(ctx, tx, rec, pending, ReasonAdminCleanup); err != nil {
					return err
				}
			}

			if l.IsHeld && l.HeldUntil == nil {
				return nil
			}

			previous := describe(l)
			sellListing(l, rec.now)

			if err := tx.UpdateListing(ctx, l); err != nil {
				return err
			}

			outcome = reconcileNormalized

			return rec.record(ctx, reconciled(l, nil, "Sold listing normalized", previous))

		case paid:
			if pending != nil {
				if _, err := cancelOrder(ctx, tx, rec, pending, ReasonAdminCleanup); err != nil {
					return err
				}
			}

			previous := describe(l)
			sellListing(l, rec.now)

			if err := tx.UpdateListing(ctx, l); err != nil {
				return err
			}

			outcome = reconcileSold

			return rec.record(ctx, reconciled(l, &paidID, "Marked sold", previous))

		case pending != nil:
			until := pending.CheckoutExpiresAt
			if l.Status == listing.StatusProcessing && l.IsHeld && l.HeldUntil != nil && l.HeldUntil.Equal(until) {
				return nil
			}

			previous := describe(l)
			holdListing(l, until, rec.now)

			if err := tx.UpdateListing(ctx, l); err != nil {
				return err
			}

			outcome = reconcileNormalized

			return rec.record(ctx, reconciled(l, &pending.ID, "Hold aligned with order", previous))

		default:
			if l.Available() && l.HeldUntil == nil {
				return nil
			}

			if err := releaseOne(ctx, tx, rec, l, nil, ReasonAdminCleanup); err != nil {
				return err
			}

			outcome = reconcileReleased

			return nil
		}
	})
	if err != nil {
		return reconcileUnchanged, err
	}

	return outcome, nil
}

func describe(l *listing.Listing) map[string]any {
	m := map[string]any{
		"previous_status":  string(l.Status),
		"previous_is_held": l.IsHeld,
	}

	if l.HeldUntil != nil {
		m["previous_until"] = l.HeldUntil.Format(time.RFC3339)
	}

	return m
}

func reconciled(l *listing.Listing, orderID *uuid.UUID, title string, metadata map[string]any) history.Event {
	ev := history.New(l.ID, history.TypeReconciled, title,
		fmt.Sprintf("Listing reconciled to %s", l.Status), metadata)
	if orderID != nil {
		ev = ev.ForOrder(*orderID)
	}

	return ev
}
