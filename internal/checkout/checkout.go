// Package checkout drives the buyer checkout flow and applies payment
// provider webhooks to the hold state machine.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/clock"
	"github.com/MrJamesThe3rd/consignd/internal/hold"
	"github.com/MrJamesThe3rd/consignd/internal/order"
	"github.com/MrJamesThe3rd/consignd/internal/payment"
)

// ErrProviderUnavailable means the checkout could not be handed to the
// payment provider. The hold has been released; the buyer may retry.
var ErrProviderUnavailable = errors.New("payment provider unavailable")

//go:generate mockgen -source=checkout.go -destination=checkout_mock.go -package=checkout
type Holds interface {
	Acquire(ctx context.Context, in hold.AcquireInput) (*order.Order, error)
	AttachCheckoutSession(ctx context.Context, orderID uuid.UUID, sessionID, url string) error
	Extend(ctx context.Context, in hold.ExtendInput) (hold.ExtendResult, error)
	Release(ctx context.Context, in hold.ReleaseInput) (hold.ReleaseResult, error)
	ConvertToSale(ctx context.Context, in hold.SaleInput) (hold.SaleResult, error)
	Policy() hold.Policy
}

type ItemResolver interface {
	ResolveItemIDs(ctx context.Context, itemIDs []string) ([]uuid.UUID, error)
}

type Orders interface {
	Get(ctx context.Context, id uuid.UUID) (*order.Order, error)
	FindBySession(ctx context.Context, sessionID string) (*order.Order, error)
}

// EventLog remembers webhook events that were fully applied.
type EventLog interface {
	Processed(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID, eventType string) error
}

// ActorWebhook attributes transitions driven by provider notifications.
const ActorWebhook = "webhook"

func buyerActor(id uuid.UUID) string {
	return "buyer:" + id.String()
}

type Config struct {
	Currency        string
	SuccessURL      string
	CancelURL       string
	ProviderTimeout time.Duration
}

type Service struct {
	holds    Holds
	items    ItemResolver
	orders   Orders
	provider payment.Provider
	clock    clock.Clock
	cfg      Config
}

func NewService(holds Holds, items ItemResolver, orders Orders, provider payment.Provider, clk clock.Clock, cfg Config) *Service {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 5 * time.Second
	}

	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}

	return &Service{holds: holds, items: items, orders: orders, provider: provider, clock: clk, cfg: cfg}
}

type StartInput struct {
	BuyerID uuid.UUID
	ItemIDs []string
	Window  time.Duration
}

// Start holds the items and opens a provider checkout session for them.
func (s *Service) Start(ctx context.Context, in StartInput) (*order.Order, error) {
	if len(in.ItemIDs) == 0 {
		return nil, fmt.Errorf("%w: no items", hold.ErrInvalidInput)
	}

	ids, err := s.items.ResolveItemIDs(ctx, in.ItemIDs)
	if err != nil {
		return nil, err
	}

	actor := buyerActor(in.BuyerID)

	o, err := s.holds.Acquire(ctx, hold.AcquireInput{
		ListingIDs: ids,
		BuyerID:    in.BuyerID,
		Window:     in.Window,
		Actor:      actor,
	})
	if err != nil {
		return nil, err
	}

	sess, err := s.createSession(ctx, o)
	if err != nil {
		s.abandon(ctx, o.ID, actor)
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	if err := s.holds.AttachCheckoutSession(ctx, o.ID, sess.ID, sess.URL); err != nil {
		s.abandon(ctx, o.ID, actor)
		return nil, fmt.Errorf("attaching checkout session: %w", err)
	}

	o.CheckoutSessionID = sess.ID
	o.CheckoutURL = sess.URL

	return o, nil
}

func (s *Service) createSession(ctx context.Context, o *order.Order) (*payment.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	items := make([]payment.SessionItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, payment.SessionItem{ListingID: item.ListingID, AmountCents: item.PriceCents})
	}

	// The provider session must outlive every extension the buyer may get.
	expiresAt := o.CreatedAt.Add(s.holds.Policy().Ceiling)

	return s.provider.CreateCheckoutSession(ctx, payment.SessionRequest{
		OrderID:     o.ID,
		AmountCents: o.TotalCents,
		Currency:    s.cfg.Currency,
		Items:       items,
		ExpiresAt:   expiresAt,
		SuccessURL:  s.cfg.SuccessURL,
		CancelURL:   s.cfg.CancelURL,
	})
}

// abandon releases a hold whose checkout could not be started.
func (s *Service) abandon(ctx context.Context, orderID uuid.UUID, actor string) {
	ctx = context.WithoutCancel(ctx)

	if _, err := s.holds.Release(ctx, hold.ReleaseInput{
		OrderID: orderID,
		Reason:  hold.ReasonCheckoutFailed,
		Actor:   actor,
	}); err != nil {
		slog.Error("failed to release abandoned checkout", "order_id", orderID, "error", err)
	}
}

func (s *Service) Extend(ctx context.Context, orderID, buyerID uuid.UUID, increment time.Duration) (hold.ExtendResult, error) {
	return s.holds.Extend(ctx, hold.ExtendInput{
		OrderID:   orderID,
		BuyerID:   buyerID,
		Increment: increment,
		Actor:     buyerActor(buyerID),
	})
}

// Cancel releases the buyer's own checkout.
func (s *Service) Cancel(ctx context.Context, orderID, buyerID uuid.UUID) error {
	if _, err := s.owned(ctx, orderID, buyerID); err != nil {
		return err
	}

	_, err := s.holds.Release(ctx, hold.ReleaseInput{
		OrderID: orderID,
		Reason:  hold.ReasonBuyerCancelled,
		Actor:   buyerActor(buyerID),
	})

	return err
}

// Timer is what the checkout page needs to render its countdown. ServerTime
// lets the client correct for clock skew.
type Timer struct {
	OrderID           uuid.UUID
	Status            order.Status
	CheckoutURL       string
	CheckoutExpiresAt time.Time
	ServerTime        time.Time
	CanExtend         bool
}

func (t Timer) Remaining() time.Duration {
	if t.Status != order.StatusPending || !t.ServerTime.Before(t.CheckoutExpiresAt) {
		return 0
	}

	return t.CheckoutExpiresAt.Sub(t.ServerTime)
}

func (s *Service) Timer(ctx context.Context, orderID, buyerID uuid.UUID) (Timer, error) {
	o, err := s.owned(ctx, orderID, buyerID)
	if err != nil {
		return Timer{}, err
	}

	now := s.clock.Now()
	ceilingAt := o.CreatedAt.Add(s.holds.Policy().Ceiling)

	return Timer{
		OrderID:           o.ID,
		Status:            o.Status,
		CheckoutURL:       o.CheckoutURL,
		CheckoutExpiresAt: o.CheckoutExpiresAt,
		ServerTime:        now,
		CanExtend: o.Status == order.StatusPending &&
			now.Before(o.CheckoutExpiresAt) &&
			o.CheckoutExpiresAt.Before(ceilingAt),
	}, nil
}

func (s *Service) owned(ctx context.Context, orderID, buyerID uuid.UUID) (*order.Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.BuyerID != buyerID {
		return nil, order.ErrNotFound
	}

	return o, nil
}
