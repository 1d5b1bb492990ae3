package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Store records applied webhook events in processed_webhook_events.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Processed(ctx context.Context, eventID string) (bool, error) {
	var exists bool

	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM processed_webhook_events WHERE event_id = $1)`, eventID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking webhook event: %w", err)
	}

	return exists, nil
}

func (s *Store) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	query := `
		INSERT INTO processed_webhook_events (event_id, event_type)
		VALUES ($1, $2)
		ON CONFLICT (event_id) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query, eventID, eventType); err != nil {
		return fmt.Errorf("recording webhook event: %w", err)
	}

	return nil
}
