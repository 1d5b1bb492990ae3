package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/history"
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts ev using ex, which should be the transaction that performs
// the state change the event describes.
func Append(ctx context.Context, ex Execer, ev history.Event) error {
	metadata, err := json.Marshal(ev.Metadata)
	if err != nil {
		return fmt.Errorf("encoding history metadata: %w", err)
	}

	query := `
		INSERT INTO listing_history (id, listing_id, order_id, event_type, title, description, actor, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var orderID uuid.NullUUID
	if ev.OrderID != nil {
		orderID = uuid.NullUUID{UUID: *ev.OrderID, Valid: true}
	}

	if _, err := ex.ExecContext(ctx, query,
		ev.ID,
		ev.ListingID,
		orderID,
		string(ev.Type),
		ev.Title,
		ev.Description,
		ev.Actor,
		string(metadata),
		ev.CreatedAt,
	); err != nil {
		return fmt.Errorf("appending history: %w", err)
	}

	return nil
}

func (s *Store) ListByListing(ctx context.Context, listingID uuid.UUID) ([]history.Event, error) {
	query := `
		SELECT id, listing_id, order_id, event_type, title, description, actor, metadata, created_at
		FROM listing_history
		WHERE listing_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var events []history.Event

	for rows.Next() {
		var ev history.Event

		var typeStr string

		var orderID uuid.NullUUID

		var metadata []byte

		if err := rows.Scan(
			&ev.ID, &ev.ListingID, &orderID, &typeStr, &ev.Title, &ev.Description,
			&ev.Actor, &metadata, &ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}

		ev.Type = history.Type(typeStr)
		if orderID.Valid {
			ev.OrderID = &orderID.UUID
		}

		if err := json.Unmarshal(metadata, &ev.Metadata); err != nil {
			return nil, fmt.Errorf("decoding history metadata: %w", err)
		}

		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}

	return events, nil
}
