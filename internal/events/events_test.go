package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/consignd/internal/events"
	"github.com/MrJamesThe3rd/consignd/internal/history"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data

	return f.err
}

func TestPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	pub := events.NewPublisher(conn)

	orderID := uuid.New()
	ev := history.New(uuid.New(), history.TypeHoldReleased, "Hold released", "expired",
		map[string]any{"reason": "system-sweep"}).
		ForOrder(orderID).
		By("system").
		At(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	require.NoError(t, pub.Publish(context.Background(), ev))
	assert.Equal(t, "listing.history.hold_released", conn.subject)

	var msg events.Message
	require.NoError(t, json.Unmarshal(conn.data, &msg))
	assert.Equal(t, ev.ListingID, msg.ListingID)
	require.NotNil(t, msg.OrderID)
	assert.Equal(t, orderID, *msg.OrderID)
	assert.Equal(t, "system-sweep", msg.Metadata["reason"])
	assert.Equal(t, "system", msg.Actor)
}

func TestPublisher_PublishError(t *testing.T) {
	pub := events.NewPublisher(&fakeConn{err: errors.New("nats: connection closed")})

	err := pub.Publish(context.Background(), history.New(uuid.New(), history.TypePurchased, "Purchased", "", nil))
	assert.Error(t, err)
}
