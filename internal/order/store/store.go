package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/order"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

// SelectColumns is the column list expected by ScanOrder, aliased on "o".
const SelectColumns = `
	o.id, o.buyer_id, o.status, o.total_cents, o.checkout_session_id, o.checkout_url,
	o.payment_reference, o.checkout_expires_at, o.created_at, o.updated_at
`

// ScanOrder reads an order row in SelectColumns order. Items are not loaded.
func ScanOrder(s scanner) (*order.Order, error) {
	var o order.Order

	var statusStr string

	var sessionID, checkoutURL, paymentRef sql.NullString

	if err := s.Scan(
		&o.ID, &o.BuyerID, &statusStr, &o.TotalCents, &sessionID, &checkoutURL,
		&paymentRef, &o.CheckoutExpiresAt, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}

	o.Status = order.Status(statusStr)
	o.CheckoutSessionID = sessionID.String
	o.CheckoutURL = checkoutURL.String
	o.PaymentReference = paymentRef.String

	return &o, nil
}

// LoadItems fills o.Items ordered by listing id.
func LoadItems(ctx context.Context, q Querier, o *order.Order) error {
	query := `
		SELECT id, order_id, listing_id, price_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY listing_id ASC
	`

	rows, err := q.QueryContext(ctx, query, o.ID)
	if err != nil {
		return fmt.Errorf("loading order items: %w", err)
	}
	defer rows.Close()

	o.Items = o.Items[:0]

	for rows.Next() {
		var item order.LineItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ListingID, &item.PriceCents); err != nil {
			return fmt.Errorf("scanning order item: %w", err)
		}

		o.Items = append(o.Items, item)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating order items: %w", err)
	}

	return nil
}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query := `SELECT ` + SelectColumns + ` FROM orders o WHERE o.id = $1`

	return s.getOne(ctx, query, id)
}

func (s *Store) GetOrderBySession(ctx context.Context, sessionID string) (*order.Order, error) {
	query := `SELECT ` + SelectColumns + ` FROM orders o WHERE o.checkout_session_id = $1`

	return s.getOne(ctx, query, sessionID)
}

func (s *Store) getOne(ctx context.Context, query string, arg any) (*order.Order, error) {
	o, err := ScanOrder(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, order.ErrNotFound
		}

		return nil, fmt.Errorf("getting order: %w", err)
	}

	if err := LoadItems(ctx, s.db, o); err != nil {
		return nil, err
	}

	return o, nil
}

func (s *Store) ListOrdersByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*order.Order, error) {
	query := `SELECT ` + SelectColumns + `
		FROM orders o
		WHERE o.buyer_id = $1
		ORDER BY o.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	var orders []*order.Order

	for rows.Next() {
		o, err := ScanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning order: %w", err)
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating orders: %w", err)
	}

	rows.Close()

	for _, o := range orders {
		if err := LoadItems(ctx, s.db, o); err != nil {
			return nil, err
		}
	}

	return orders, nil
}
