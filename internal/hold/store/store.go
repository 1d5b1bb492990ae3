// Package store is the Postgres implementation of hold.Repository.
//
// Transactions run at READ COMMITTED. Consistency comes from FOR UPDATE row
// locks taken in a fixed order (order row, then listings by id) and from the
// partial unique index that allows one held line item per listing.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/database/pgerr"
	"github.com/MrJamesThe3rd/consignd/internal/history"
	historystore "github.com/MrJamesThe3rd/consignd/internal/history/store"
	"github.com/MrJamesThe3rd/consignd/internal/hold"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
	listingstore "github.com/MrJamesThe3rd/consignd/internal/listing/store"
	"github.com/MrJamesThe3rd/consignd/internal/order"
	orderstore "github.com/MrJamesThe3rd/consignd/internal/order/store"
)

// Line item hold states. Derived from the order status on every order update.
const (
	stateHeld     = "held"
	stateSold     = "sold"
	stateReleased = "released"
)

func holdState(s order.Status) string {
	switch {
	case s == order.StatusPending:
		return stateHeld
	case s.IsPaid():
		return stateSold
	default:
		return stateReleased
	}
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Begin(ctx context.Context) (hold.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify("beginning hold tx", err)
	}

	return &holdTx{tx: tx}, nil
}

func (s *Store) PendingOrderForListing(ctx context.Context, listingID uuid.UUID) (uuid.UUID, bool, error) {
	return orderForListing(ctx, s.db, listingID, stateHeld)
}

func (s *Store) ExpiredOrders(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM orders
		WHERE status = $1 AND checkout_expires_at < $2
		ORDER BY checkout_expires_at ASC
		LIMIT $3
	`

	return s.ids(ctx, "finding expired orders", query, string(order.StatusPending), before, limit)
}

func (s *Store) ExpiredHolds(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM listings
		WHERE is_held AND status <> $1 AND held_until < $2
		ORDER BY held_until ASC
		LIMIT $3
	`

	return s.ids(ctx, "finding expired holds", query, string(listing.StatusSold), before, limit)
}

// InconsistentListings reports listings whose own fields disagree, or whose
// status disagrees with the line items that reference them.
func (s *Store) InconsistentListings(ctx context.Context, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT l.id
		FROM listings l
		LEFT JOIN order_items held ON held.listing_id = l.id AND held.hold_state = 'held'
		LEFT JOIN orders po ON po.id = held.order_id
		WHERE (l.status = 'active' AND (l.is_held OR l.held_until IS NOT NULL OR po.id IS NOT NULL))
		   OR (l.status = 'processing' AND (NOT l.is_held OR l.held_until IS NULL OR po.id IS NULL
		                                    OR po.checkout_expires_at <> l.held_until))
		   OR (l.status = 'sold' AND (NOT l.is_held OR l.held_until IS NOT NULL OR po.id IS NOT NULL))
		   OR (l.status <> 'sold' AND EXISTS (
		          SELECT 1 FROM order_items s WHERE s.listing_id = l.id AND s.hold_state = 'sold'))
		ORDER BY l.id ASC
		LIMIT $1
	`

	return s.ids(ctx, "finding inconsistent listings", query, limit)
}

func (s *Store) ids(ctx context.Context, op, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	var ids []uuid.UUID

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: scanning: %w", op, err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}

	return ids, nil
}

func orderForListing(ctx context.Context, q orderstore.Querier, listingID uuid.UUID, state string) (uuid.UUID, bool, error) {
	query := `
		SELECT order_id FROM order_items
		WHERE listing_id = $1 AND hold_state = $2
		ORDER BY order_id ASC
		LIMIT 1
	`

	var id uuid.UUID

	err := q.QueryRowContext(ctx, query, listingID, state).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, false, nil
	}

	if err != nil {
		return uuid.Nil, false, classify("finding order for listing", err)
	}

	return id, true, nil
}

// classify marks retryable driver errors with hold.ErrTransient.
func classify(op string, err error) error {
	if pgerr.IsTransient(err) {
		return fmt.Errorf("%s: %w: %w", op, hold.ErrTransient, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

type holdTx struct {
	tx *sql.Tx
}

func (t *holdTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return classify("committing hold tx", err)
	}

	return nil
}

func (t *holdTx) Rollback() error { return t.tx.Rollback() }

func (t *holdTx) LockOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query := `SELECT ` + orderstore.SelectColumns + ` FROM orders o WHERE o.id = $1 FOR UPDATE`

	o, err := orderstore.ScanOrder(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", id, hold.ErrNotFound)
		}

		return nil, classify("locking order", err)
	}

	if err := orderstore.LoadItems(ctx, t.tx, o); err != nil {
		return nil, classify("locking order", err)
	}

	return o, nil
}

func (t *holdTx) LockListings(ctx context.Context, ids []uuid.UUID) ([]*listing.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + listingstore.SelectColumns + `
		FROM listings l
		WHERE l.id = ANY($1::uuid[])
		ORDER BY l.id ASC
		FOR UPDATE`

	rows, err := t.tx.QueryContext(ctx, query, uuidStrings(ids))
	if err != nil {
		return nil, classify("locking listings", err)
	}
	defer rows.Close()

	var listings []*listing.Listing

	for rows.Next() {
		l, err := listingstore.ScanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning locked listing: %w", err)
		}

		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, classify("locking listings", err)
	}

	return listings, nil
}

func (t *holdTx) PendingOrderForListing(ctx context.Context, listingID uuid.UUID) (uuid.UUID, bool, error) {
	return orderForListing(ctx, t.tx, listingID, stateHeld)
}

func (t *holdTx) PaidOrderForListing(ctx context.Context, listingID uuid.UUID) (uuid.UUID, bool, error) {
	return orderForListing(ctx, t.tx, listingID, stateSold)
}

func (t *holdTx) CreateOrder(ctx context.Context, o *order.Order) error {
	query := `
		INSERT INTO orders (id, buyer_id, status, total_cents, checkout_expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := t.tx.ExecContext(ctx, query,
		o.ID, o.BuyerID, string(o.Status), o.TotalCents, o.CheckoutExpiresAt, o.CreatedAt,
	); err != nil {
		return classify("creating order", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, listing_id, price_cents, hold_state)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, item := range o.Items {
		if _, err := t.tx.ExecContext(ctx, itemQuery,
			item.ID, o.ID, item.ListingID, item.PriceCents, holdState(o.Status),
		); err != nil {
			if pgerr.IsUniqueViolation(err) {
				return fmt.Errorf("%w: listing %s has a held line item", hold.ErrConflict, item.ListingID)
			}

			return classify("creating order item", err)
		}
	}

	return nil
}

func (t *holdTx) UpdateOrder(ctx context.Context, o *order.Order) error {
	query := `
		UPDATE orders
		SET status = $2,
			checkout_session_id = NULLIF($3, ''),
			checkout_url = NULLIF($4, ''),
			payment_reference = NULLIF($5, ''),
			checkout_expires_at = $6,
			updated_at = $7
		WHERE id = $1
	`

	res, err := t.tx.ExecContext(ctx, query,
		o.ID, string(o.Status), o.CheckoutSessionID, o.CheckoutURL, o.PaymentReference,
		o.CheckoutExpiresAt, o.UpdatedAt,
	)
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return fmt.Errorf("%w: checkout session already attached", hold.ErrConflict)
		}

		return classify("updating order", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %s: %w", o.ID, hold.ErrNotFound)
	}

	if _, err := t.tx.ExecContext(ctx,
		`UPDATE order_items SET hold_state = $2 WHERE order_id = $1`,
		o.ID, holdState(o.Status),
	); err != nil {
		if pgerr.IsUniqueViolation(err) {
			return fmt.Errorf("%w: order %s", hold.ErrConflict, o.ID)
		}

		return classify("updating order items", err)
	}

	return nil
}

func (t *holdTx) UpdateListing(ctx context.Context, l *listing.Listing) error {
	query := `
		UPDATE listings
		SET status = $2, is_held = $3, held_until = $4, updated_at = $5
		WHERE id = $1
	`

	res, err := t.tx.ExecContext(ctx, query, l.ID, string(l.Status), l.IsHeld, l.HeldUntil, l.UpdatedAt)
	if err != nil {
		return classify("updating listing", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("listing %s: %w", l.ID, hold.ErrNotFound)
	}

	return nil
}

func (t *holdTx) AppendHistory(ctx context.Context, ev history.Event) error {
	if err := historystore.Append(ctx, t.tx, ev); err != nil {
		return classify("appending history", err)
	}

	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}

	return out
}
