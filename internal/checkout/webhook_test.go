package checkout_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/consignd/internal/checkout"
	"github.com/MrJamesThe3rd/consignd/internal/clock"
	"github.com/MrJamesThe3rd/consignd/internal/history"
	"github.com/MrJamesThe3rd/consignd/internal/hold"
	"github.com/MrJamesThe3rd/consignd/internal/hold/holdtest"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
	"github.com/MrJamesThe3rd/consignd/internal/order"
	"github.com/MrJamesThe3rd/consignd/internal/payment"
)

type webhookFixture struct {
	store    *holdtest.Store
	clock    *clock.Manual
	mgr      *hold.Manager
	provider *payment.MockProvider
	proc     *checkout.WebhookProcessor
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()

	f := &webhookFixture{
		store:    holdtest.New(),
		clock:    clock.NewManual(t0),
		provider: payment.NewMockProvider(gomock.NewController(t)),
	}
	f.mgr = hold.NewManager(f.store, f.clock)
	f.proc = checkout.NewWebhookProcessor(f.mgr, order.NewService(f.store), f.provider, f.store)

	return f
}

// checkout holds one fresh listing for buyer and attaches session sessionID.
func (f *webhookFixture) checkout(t *testing.T, buyer uuid.UUID, listingID uuid.UUID, sessionID string) *order.Order {
	t.Helper()

	ctx := context.Background()

	o, err := f.mgr.Acquire(ctx, hold.AcquireInput{ListingIDs: []uuid.UUID{listingID}, BuyerID: buyer})
	require.NoError(t, err)
	require.NoError(t, f.mgr.AttachCheckoutSession(ctx, o.ID, sessionID, "https://pay.test/"+sessionID))

	return o
}

func (f *webhookFixture) seed(itemID string) uuid.UUID {
	return f.store.Seed(listing.Listing{ItemID: itemID, Title: itemID, PriceCents: 2000, CreatedAt: t0})
}

func (f *webhookFixture) processed(t *testing.T, eventID string) bool {
	t.Helper()

	ok, err := f.store.Processed(context.Background(), eventID)
	require.NoError(t, err)

	return ok
}

func completed(id, sessionID string) payment.Event {
	return payment.Event{ID: id, Type: payment.EventSessionCompleted, SessionID: sessionID}
}

func TestWebhook_CompletedSellsOrder(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	id := f.seed("A")
	o := f.checkout(t, uuid.New(), id, "cs_1")

	f.provider.EXPECT().
		RetrieveSession(gomock.Any(), "cs_1").
		Return(&payment.Session{ID: "cs_1", Status: payment.SessionComplete, PaymentReference: "pi_1"}, nil).
		Times(1)

	require.NoError(t, f.proc.Process(ctx, completed("evt_1", "cs_1")))
	// Redelivery is skipped before the provider is asked again.
	require.NoError(t, f.proc.Process(ctx, completed("evt_1", "cs_1")))

	got := f.store.Order(o.ID)
	assert.Equal(t, order.StatusPaid, got.Status)
	assert.Equal(t, "pi_1", got.PaymentReference)

	l := f.store.Listing(id)
	assert.Equal(t, listing.StatusSold, l.Status)
	assert.True(t, l.IsHeld)
	assert.Nil(t, l.HeldUntil)
	assert.True(t, f.processed(t, "evt_1"))
}

func TestWebhook_CompletedPrefersOrderReference(t *testing.T) {
	f := newWebhookFixture(t)

	id := f.seed("A")
	o := f.checkout(t, uuid.New(), id, "cs_1")

	f.provider.EXPECT().
		RetrieveSession(gomock.Any(), "cs_1").
		Return(&payment.Session{ID: "cs_1", Status: payment.SessionComplete}, nil)

	ev := completed("evt_1", "cs_1")
	ev.OrderID = o.ID
	ev.PaymentReference = "pi_from_event"

	require.NoError(t, f.proc.Process(context.Background(), ev))
	assert.Equal(t, "pi_from_event", f.store.Order(o.ID).PaymentReference)
}

func TestWebhook_UnpaidSessionIsAcked(t *testing.T) {
	f := newWebhookFixture(t)

	id := f.seed("A")
	o := f.checkout(t, uuid.New(), id, "cs_1")

	f.provider.EXPECT().
		RetrieveSession(gomock.Any(), "cs_1").
		Return(&payment.Session{ID: "cs_1", Status: payment.SessionOpen}, nil)

	require.NoError(t, f.proc.Process(context.Background(), completed("evt_1", "cs_1")))
	assert.Equal(t, order.StatusPending, f.store.Order(o.ID).Status)
	assert.True(t, f.processed(t, "evt_1"))
}

func TestWebhook_ProviderErrorIsRetried(t *testing.T) {
	f := newWebhookFixture(t)

	id := f.seed("A")
	o := f.checkout(t, uuid.New(), id, "cs_1")

	f.provider.EXPECT().RetrieveSession(gomock.Any(), "cs_1").Return(nil, payment.ErrUnavailable)

	err := f.proc.Process(context.Background(), completed("evt_1", "cs_1"))
	require.ErrorIs(t, err, payment.ErrUnavailable)
	assert.False(t, f.processed(t, "evt_1"))
	assert.Equal(t, order.StatusPending, f.store.Order(o.ID).Status)
}

func TestWebhook_LatePaymentRevivesOrder(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	id := f.seed("A")
	o := f.checkout(t, uuid.New(), id, "cs_1")

	_, err := f.mgr.Release(ctx, hold.ReleaseInput{OrderID: o.ID, Reason: hold.ReasonSystemSweep})
	require.NoError(t, err)

	f.provider.EXPECT().
		RetrieveSession(gomock.Any(), "cs_1").
		Return(&payment.Session{ID: "cs_1", Status: payment.SessionComplete, PaymentReference: "pi_1"}, nil)

	require.NoError(t, f.proc.Process(ctx, completed("evt_1", "cs_1")))
	assert.Equal(t, order.StatusPaid, f.store.Order(o.ID).Status)
	assert.Equal(t, listing.StatusSold, f.store.Listing(id).Status)
	assert.Contains(t, f.store.HistoryTypes(id), history.TypeReconciled)
}

func TestWebhook_MismatchIsAcked(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	id := f.seed("A")
	first := f.checkout(t, uuid.New(), id, "cs_1")

	_, err := f.mgr.Release(ctx, hold.ReleaseInput{OrderID: first.ID, Reason: hold.ReasonExpiredTimer})
	require.NoError(t, err)

	second := f.checkout(t, uuid.New(), id, "cs_2")
	_, err = f.mgr.ConvertToSale(ctx, hold.SaleInput{OrderID: second.ID, PaymentReference: "pi_2"})
	require.NoError(t, err)

	f.provider.EXPECT().
		RetrieveSession(gomock.Any(), "cs_1").
		Return(&payment.Session{ID: "cs_1", Status: payment.SessionComplete, PaymentReference: "pi_1"}, nil)

	require.NoError(t, f.proc.Process(ctx, completed("evt_1", "cs_1")))
	assert.True(t, f.processed(t, "evt_1"))

	assert.Equal(t, order.StatusCancelled, f.store.Order(first.ID).Status)
	assert.Equal(t, order.StatusPaid, f.store.Order(second.ID).Status)
	assert.Contains(t, f.store.HistoryTypes(id), history.TypeReconciliationMismatch)
}

func TestWebhook_ExpiredOnlyReleasesLapsedCheckout(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	id := f.seed("A")
	o := f.checkout(t, uuid.New(), id, "cs_1")

	early := payment.Event{ID: "evt_early", Type: payment.EventSessionExpired, SessionID: "cs_1"}
	require.NoError(t, f.proc.Process(ctx, early))
	assert.Equal(t, order.StatusPending, f.store.Order(o.ID).Status)
	assert.True(t, f.processed(t, "evt_early"))

	f.clock.Advance(11 * time.Minute)

	late := payment.Event{ID: "evt_late", Type: payment.EventSessionExpired, SessionID: "cs_1"}
	require.NoError(t, f.proc.Process(ctx, late))
	assert.Equal(t, order.StatusCancelled, f.store.Order(o.ID).Status)
	assert.True(t, f.store.Listing(id).Available())
}

func TestWebhook_PaymentFailedReleases(t *testing.T) {
	f := newWebhookFixture(t)

	id := f.seed("A")
	o := f.checkout(t, uuid.New(), id, "cs_1")

	ev := payment.Event{ID: "evt_1", Type: payment.EventPaymentFailed, OrderID: o.ID}
	require.NoError(t, f.proc.Process(context.Background(), ev))

	assert.Equal(t, order.StatusCancelled, f.store.Order(o.ID).Status)
	assert.True(t, f.store.Listing(id).Available())
}

func TestWebhook_UnknownOrderIsAcked(t *testing.T) {
	f := newWebhookFixture(t)

	require.NoError(t, f.proc.Process(context.Background(), completed("evt_1", "cs_missing")))
	assert.True(t, f.processed(t, "evt_1"))
}

func TestWebhook_UnhandledTypeIsAcked(t *testing.T) {
	f := newWebhookFixture(t)

	id := f.seed("A")
	o := f.checkout(t, uuid.New(), id, "cs_1")

	ev := payment.Event{ID: "evt_1", Type: "charge.refunded", SessionID: "cs_1"}
	require.NoError(t, f.proc.Process(context.Background(), ev))

	assert.True(t, f.processed(t, "evt_1"))
	assert.Equal(t, order.StatusPending, f.store.Order(o.ID).Status)
}

func TestWebhook_CompletedWithoutSessionIsAcked(t *testing.T) {
	f := newWebhookFixture(t)

	id := f.seed("A")
	o := f.checkout(t, uuid.New(), id, "cs_1")

	ev := completed("evt_1", "")
	ev.OrderID = o.ID

	require.NoError(t, f.proc.Process(context.Background(), ev))
	assert.True(t, f.processed(t, "evt_1"))
	assert.Equal(t, order.StatusPending, f.store.Order(o.ID).Status)
}

func TestWebhook_CompletedForAnotherSessionIsAcked(t *testing.T) {
	f := newWebhookFixture(t)

	id := f.seed("A")
	o := f.checkout(t, uuid.New(), id, "cs_1")

	ev := completed("evt_1", "cs_other")
	ev.OrderID = o.ID

	require.NoError(t, f.proc.Process(context.Background(), ev))
	assert.True(t, f.processed(t, "evt_1"))
	assert.Equal(t, order.StatusPending, f.store.Order(o.ID).Status)
	assert.Equal(t, listing.StatusProcessing, f.store.Listing(id).Status)
}
