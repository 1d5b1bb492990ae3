package hold_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/consignd/internal/clock"
	"github.com/MrJamesThe3rd/consignd/internal/hold"
	"github.com/MrJamesThe3rd/consignd/internal/hold/holdtest"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
	"github.com/MrJamesThe3rd/consignd/internal/order"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store    *holdtest.Store
	clock    *clock.Manual
	notifier *holdtest.Notifier
	mgr      *hold.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    holdtest.New(),
		clock:    clock.NewManual(t0),
		notifier: &holdtest.Notifier{},
	}
	f.mgr = hold.NewManager(f.store, f.clock, hold.WithNotifier(f.notifier))

	return f
}

func (f *fixture) seed(itemID string, price int64) uuid.UUID {
	return f.store.Seed(listing.Listing{
		ItemID:     itemID,
		Title:      "Item " + itemID,
		PriceCents: price,
		Status:     listing.StatusActive,
		CreatedAt:  t0,
	})
}

func (f *fixture) acquire(t *testing.T, buyer uuid.UUID, window time.Duration, ids ...uuid.UUID) *order.Order {
	t.Helper()

	o, err := f.mgr.Acquire(context.Background(), hold.AcquireInput{
		ListingIDs: ids,
		BuyerID:    buyer,
		Window:     window,
		Actor:      "buyer:" + buyer.String(),
	})
	require.NoError(t, err)

	return o
}
