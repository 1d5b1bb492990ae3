package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/database/pgerr"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Scanner is satisfied by both *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// SelectColumns is the column list expected by ScanListing, aliased on "l".
const SelectColumns = `
	l.id, l.item_id, l.seller_id, l.title, l.price_cents, l.status,
	l.is_held, l.held_until, l.created_at, l.updated_at
`

// ScanListing reads a listing row in SelectColumns order.
func ScanListing(s Scanner) (*listing.Listing, error) {
	var l listing.Listing

	var statusStr string

	var sellerID uuid.NullUUID

	if err := s.Scan(
		&l.ID, &l.ItemID, &sellerID, &l.Title, &l.PriceCents, &statusStr,
		&l.IsHeld, &l.HeldUntil, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}

	l.Status = listing.Status(statusStr)
	if sellerID.Valid {
		l.SellerID = sellerID.UUID
	}

	return &l, nil
}

func (s *Store) CreateListing(ctx context.Context, l *listing.Listing) error {
	query := `
		INSERT INTO listings (item_id, seller_id, title, price_cents, status, is_held, held_until, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NULL, NOW())
		RETURNING id, created_at
	`

	var sellerID uuid.NullUUID
	if l.SellerID != uuid.Nil {
		sellerID = uuid.NullUUID{UUID: l.SellerID, Valid: true}
	}

	err := s.db.QueryRowContext(ctx, query,
		l.ItemID,
		sellerID,
		l.Title,
		l.PriceCents,
		listing.StatusActive,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return listing.ErrDuplicateItemID
		}

		return fmt.Errorf("creating listing: %w", err)
	}

	l.Status = listing.StatusActive
	l.IsHeld = false
	l.HeldUntil = nil

	return nil
}

func (s *Store) GetListing(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	query := `SELECT ` + SelectColumns + ` FROM listings l WHERE l.id = $1`

	l, err := ScanListing(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, listing.ErrNotFound
		}

		return nil, fmt.Errorf("getting listing: %w", err)
	}

	return l, nil
}

func (s *Store) GetListingByItemID(ctx context.Context, itemID string) (*listing.Listing, error) {
	query := `SELECT ` + SelectColumns + ` FROM listings l WHERE l.item_id = $1`

	l, err := ScanListing(s.db.QueryRowContext(ctx, query, itemID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, listing.ErrNotFound
		}

		return nil, fmt.Errorf("getting listing by item id: %w", err)
	}

	return l, nil
}

func (s *Store) ListListings(ctx context.Context, filter listing.ListFilter) ([]*listing.Listing, error) {
	query := `SELECT ` + SelectColumns + ` FROM listings l WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND l.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	query += " ORDER BY l.created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)

		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing listings: %w", err)
	}
	defer rows.Close()

	var listings []*listing.Listing

	for rows.Next() {
		l, err := ScanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}

		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating listings: %w", err)
	}

	return listings, nil
}
