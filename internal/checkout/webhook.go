package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/hold"
	"github.com/MrJamesThe3rd/consignd/internal/order"
	"github.com/MrJamesThe3rd/consignd/internal/payment"
)

// WebhookProcessor applies provider events. Delivery is at least once, so
// an event is recorded as processed only after its effect committed, and
// every effect it triggers is idempotent.
type WebhookProcessor struct {
	holds    Holds
	orders   Orders
	provider payment.Provider
	log      EventLog
}

func NewWebhookProcessor(holds Holds, orders Orders, provider payment.Provider, log EventLog) *WebhookProcessor {
	return &WebhookProcessor{holds: holds, orders: orders, provider: provider, log: log}
}

// Process returns an error only when redelivery could succeed.
func (p *WebhookProcessor) Process(ctx context.Context, ev payment.Event) error {
	seen, err := p.log.Processed(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("checking webhook event %s: %w", ev.ID, err)
	}

	if seen {
		return nil
	}

	orderID, err := p.orderFor(ctx, ev)
	if err != nil {
		if !errors.Is(err, order.ErrNotFound) {
			return err
		}

		slog.Warn("webhook event for unknown order", "event_id", ev.ID, "session_id", ev.SessionID)

		return p.done(ctx, ev)
	}

	switch ev.Type {
	case payment.EventSessionCompleted:
		err = p.completed(ctx, ev, orderID)
	case payment.EventSessionExpired:
		err = p.release(ctx, orderID, hold.ReasonExpiredTimer, true)
	case payment.EventPaymentFailed:
		err = p.release(ctx, orderID, hold.ReasonPaymentFailed, false)
	default:
		slog.Debug("ignoring webhook event", "event_id", ev.ID, "type", ev.Type)
	}

	if err != nil {
		return err
	}

	return p.done(ctx, ev)
}

func (p *WebhookProcessor) orderFor(ctx context.Context, ev payment.Event) (uuid.UUID, error) {
	if ev.OrderID != uuid.Nil {
		return ev.OrderID, nil
	}

	if ev.SessionID == "" {
		return uuid.Nil, order.ErrNotFound
	}

	o, err := p.orders.FindBySession(ctx, ev.SessionID)
	if err != nil {
		return uuid.Nil, err
	}

	return o.ID, nil
}

func (p *WebhookProcessor) completed(ctx context.Context, ev payment.Event, orderID uuid.UUID) error {
	if ev.SessionID == "" {
		slog.Warn("completion event without session", "event_id", ev.ID, "order_id", orderID)
		return nil
	}

	// client_reference_id named the order; it must be the one this session was opened for.
	if ev.OrderID != uuid.Nil {
		o, err := p.orders.Get(ctx, orderID)
		if errors.Is(err, order.ErrNotFound) {
			slog.Warn("payment for unknown order", "event_id", ev.ID, "order_id", orderID)
			return nil
		}

		if err != nil {
			return fmt.Errorf("loading order %s: %w", orderID, err)
		}

		if o.CheckoutSessionID != "" && o.CheckoutSessionID != ev.SessionID {
			slog.Error("completion event session does not match order",
				"event_id", ev.ID, "order_id", orderID,
				"session_id", ev.SessionID, "order_session_id", o.CheckoutSessionID)
			return nil
		}
	}

	sess, err := p.provider.RetrieveSession(ctx, ev.SessionID)
	if err != nil {
		return fmt.Errorf("verifying session %s: %w", ev.SessionID, err)
	}

	if sess.Status != payment.SessionComplete {
		slog.Warn("completion event for unpaid session",
			"event_id", ev.ID, "session_id", ev.SessionID, "status", sess.Status)
		return nil
	}

	ref := sess.PaymentReference
	if ref == "" {
		ref = ev.PaymentReference
	}

	if ref == "" {
		ref = sess.ID
	}

	res, err := p.holds.ConvertToSale(ctx, hold.SaleInput{
		OrderID:          orderID,
		PaymentReference: ref,
		Actor:            ActorWebhook,
	})

	var mismatch *hold.MismatchError

	switch {
	case errors.As(err, &mismatch):
		// Redelivery cannot fix this; the mismatch is in the listing history.
		slog.Error("payment could not be applied",
			"event_id", ev.ID, "order_id", mismatch.OrderID,
			"listings", mismatch.Listings, "reason", mismatch.Reason)
		return nil
	case errors.Is(err, hold.ErrNotFound):
		slog.Warn("payment for unknown order", "event_id", ev.ID, "order_id", orderID)
		return nil
	case err != nil:
		return fmt.Errorf("converting order %s to sale: %w", orderID, err)
	}

	if res.Revived {
		slog.Info("late payment revived cancelled order", "order_id", orderID, "payment_reference", ref)
	}

	return nil
}

func (p *WebhookProcessor) release(ctx context.Context, orderID uuid.UUID, reason hold.Reason, onlyIfExpired bool) error {
	_, err := p.holds.Release(ctx, hold.ReleaseInput{
		OrderID:       orderID,
		Reason:        reason,
		Actor:         ActorWebhook,
		OnlyIfExpired: onlyIfExpired,
	})
	if err != nil && !errors.Is(err, hold.ErrNotFound) {
		return fmt.Errorf("releasing order %s: %w", orderID, err)
	}

	return nil
}

func (p *WebhookProcessor) done(ctx context.Context, ev payment.Event) error {
	if err := p.log.MarkProcessed(ctx, ev.ID, string(ev.Type)); err != nil {
		return fmt.Errorf("recording webhook event %s: %w", ev.ID, err)
	}

	return nil
}
