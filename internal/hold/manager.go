// Package hold owns the listing-hold / checkout-expiry state machine.
//
// Manager is the only writer of a listing's status, is_held and held_until
// fields and of an order's status, checkout_expires_at and payment_reference.
// Every transition runs in a single store transaction together with the
// history events that describe it.
package hold

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/clock"
	"github.com/MrJamesThe3rd/consignd/internal/history"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
	"github.com/MrJamesThe3rd/consignd/internal/order"
)

type Repository interface {
	Begin(ctx context.Context) (Tx, error)

	// PendingOrderForListing is an unlocked lookup used to pick the order
	// row to lock before the listing rows.
	PendingOrderForListing(ctx context.Context, listingID uuid.UUID) (uuid.UUID, bool, error)

	ExpiredOrders(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
	ExpiredHolds(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
	InconsistentListings(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// Tx is one store transaction. Lock methods take row locks held until
// Commit or Rollback. Orders are always locked before listings, and
// listings in ascending ID order.
type Tx interface {
	LockOrder(ctx context.Context, id uuid.UUID) (*order.Order, error)
	LockListings(ctx context.Context, ids []uuid.UUID) ([]*listing.Listing, error)
	PendingOrderForListing(ctx context.Context, listingID uuid.UUID) (uuid.UUID, bool, error)
	PaidOrderForListing(ctx context.Context, listingID uuid.UUID) (uuid.UUID, bool, error)

	CreateOrder(ctx context.Context, o *order.Order) error
	UpdateOrder(ctx context.Context, o *order.Order) error
	UpdateListing(ctx context.Context, l *listing.Listing) error
	AppendHistory(ctx context.Context, ev history.Event) error

	Commit() error
	Rollback() error
}

// Notifier fans committed history events out to other systems.
type Notifier interface {
	Publish(ctx context.Context, ev history.Event) error
}

type Manager struct {
	repo     Repository
	clock    clock.Clock
	policy   Policy
	notifier Notifier
}

type Option func(*Manager)

// WithPolicy overrides the default checkout timing rules.
func WithPolicy(p Policy) Option {
	return func(m *Manager) {
		m.policy = p.normalized()
	}
}

// WithNotifier publishes every committed history event.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

func NewManager(repo Repository, clk clock.Clock, opts ...Option) *Manager {
	m := &Manager{
		repo:   repo,
		clock:  clk,
		policy: DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Manager) Policy() Policy {
	return m.policy
}

// recorder stamps and appends history events inside the running transaction.
type recorder struct {
	tx     Tx
	now    time.Time
	actor  string
	events []history.Event
}

func (r *recorder) record(ctx context.Context, ev history.Event) error {
	ev = ev.By(r.actor).At(r.now)
	if err := r.tx.AppendHistory(ctx, ev); err != nil {
		return err
	}

	r.events = append(r.events, ev)

	return nil
}

type txFunc func(ctx context.Context, tx Tx, rec *recorder) error

// inTx runs fn in a transaction, retrying ErrTransient failures up to
// Policy.TxAttempts times. fn must not keep state across attempts.
func (m *Manager) inTx(ctx context.Context, op, actor string, fn txFunc) error {
	if actor == "" {
		actor = ActorSystem
	}

	var lastErr error

	for attempt := 1; attempt <= m.policy.TxAttempts; attempt++ {
		rec := &recorder{now: m.clock.Now(), actor: actor}

		err := m.attempt(ctx, rec, fn)
		if err == nil {
			m.notify(ctx, rec.events)
			return nil
		}

		if !errors.Is(err, ErrTransient) && !errors.Is(err, errStale) {
			return err
		}

		lastErr = err
		slog.Warn("retrying hold transaction", "op", op, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 20 * time.Millisecond):
		}
	}

	if errors.Is(lastErr, errStale) {
		return fmt.Errorf("%s: %w", op, ErrTransient)
	}

	return fmt.Errorf("%s: %w", op, lastErr)
}

func (m *Manager) attempt(ctx context.Context, rec *recorder, fn txFunc) error {
	tx, err := m.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rec.tx = tx

	if err := fn(ctx, tx, rec); err != nil {
		return err
	}

	return tx.Commit()
}

func (m *Manager) notify(ctx context.Context, events []history.Event) {
	if m.notifier == nil {
		return
	}

	for _, ev := range events {
		if err := m.notifier.Publish(ctx, ev); err != nil {
			slog.Warn("failed to publish history event",
				"listing_id", ev.ListingID, "type", ev.Type, "error", err)
		}
	}
}

// lockAll locks the listings and fails with ErrNotFound if any is missing.
func lockAll(ctx context.Context, tx Tx, ids []uuid.UUID) ([]*listing.Listing, error) {
	listings, err := tx.LockListings(ctx, ids)
	if err != nil {
		return nil, err
	}

	if len(listings) != len(ids) {
		return nil, fmt.Errorf("%w: %d of %d listings", ErrNotFound, len(ids)-len(listings), len(ids))
	}

	return listings, nil
}

func holdListing(l *listing.Listing, until, now time.Time) {
	u := until
	l.Status = listing.StatusProcessing
	l.IsHeld = true
	l.HeldUntil = &u
	l.UpdatedAt = &now
}

func freeListing(l *listing.Listing, now time.Time) {
	l.Status = listing.StatusActive
	l.IsHeld = false
	l.HeldUntil = nil
	l.UpdatedAt = &now
}

// sellListing keeps the hold flag as a permanent lock on the sold item.
func sellListing(l *listing.Listing, now time.Time) {
	l.Status = listing.StatusSold
	l.IsHeld = true
	l.HeldUntil = nil
	l.UpdatedAt = &now
}

func uniqueSorted(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))

	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	SortIDs(out)

	return out
}

// SortIDs sorts in the byte order Postgres uses for uuid columns.
func SortIDs(ids []uuid.UUID) {
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
}
