// Package events fans committed listing history out over NATS so that
// notification and catalog-sync consumers can react to hold transitions.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/MrJamesThe3rd/consignd/internal/history"
)

// SubjectPrefix is followed by the history event type.
const SubjectPrefix = "listing.history."

type conn interface {
	Publish(subject string, data []byte) error
}

type Publisher struct {
	conn conn
	nc   *nats.Conn
}

// Connect dials NATS. Callers close the publisher on shutdown.
func Connect(url string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("consignd"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}

	return &Publisher{conn: nc, nc: nc}, nil
}

func newPublisher(c conn) *Publisher {
	return &Publisher{conn: c}
}

// Message is the wire form of a history event.
type Message struct {
	ID          uuid.UUID      `json:"id"`
	ListingID   uuid.UUID      `json:"listing_id"`
	OrderID     *uuid.UUID     `json:"order_id,omitempty"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Actor       string         `json:"actor"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (p *Publisher) Publish(_ context.Context, ev history.Event) error {
	data, err := json.Marshal(Message{
		ID:          ev.ID,
		ListingID:   ev.ListingID,
		OrderID:     ev.OrderID,
		Type:        string(ev.Type),
		Title:       ev.Title,
		Description: ev.Description,
		Actor:       ev.Actor,
		Metadata:    ev.Metadata,
		CreatedAt:   ev.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encoding history event: %w", err)
	}

	if err := p.conn.Publish(SubjectPrefix+string(ev.Type), data); err != nil {
		return fmt.Errorf("publishing history event: %w", err)
	}

	return nil
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() {
	if p.nc == nil {
		return
	}

	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}

// Noop drops every event. Used when NATS is not configured.
type Noop struct{}

func (Noop) Publish(context.Context, history.Event) error { return nil }
