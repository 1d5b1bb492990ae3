package checkout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/consignd/internal/checkout"
	"github.com/MrJamesThe3rd/consignd/internal/clock"
	"github.com/MrJamesThe3rd/consignd/internal/hold"
	"github.com/MrJamesThe3rd/consignd/internal/order"
	"github.com/MrJamesThe3rd/consignd/internal/payment"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type mocks struct {
	holds    *checkout.MockHolds
	items    *checkout.MockItemResolver
	orders   *checkout.MockOrders
	provider *payment.MockProvider
	clock    *clock.Manual
}

func newService(t *testing.T) (*checkout.Service, *mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := &mocks{
		holds:    checkout.NewMockHolds(ctrl),
		items:    checkout.NewMockItemResolver(ctrl),
		orders:   checkout.NewMockOrders(ctrl),
		provider: payment.NewMockProvider(ctrl),
		clock:    clock.NewManual(t0),
	}
	m.holds.EXPECT().Policy().Return(hold.DefaultPolicy()).AnyTimes()

	svc := checkout.NewService(m.holds, m.items, m.orders, m.provider, m.clock, checkout.Config{
		Currency:   "eur",
		SuccessURL: "https://shop.test/ok",
		CancelURL:  "https://shop.test/cancel",
	})

	return svc, m
}

func pendingOrder(buyer uuid.UUID, listingIDs ...uuid.UUID) *order.Order {
	o := &order.Order{
		ID:                uuid.New(),
		BuyerID:           buyer,
		Status:            order.StatusPending,
		CheckoutExpiresAt: t0.Add(10 * time.Minute),
		CreatedAt:         t0,
	}

	for _, id := range listingIDs {
		o.Items = append(o.Items, order.LineItem{ID: uuid.New(), OrderID: o.ID, ListingID: id, PriceCents: 1500})
		o.TotalCents += 1500
	}

	return o
}

func TestService_Start(t *testing.T) {
	buyer := uuid.New()
	listingA, listingB := uuid.New(), uuid.New()

	type testCase struct {
		name      string
		items     []string
		setupMock func(m *mocks, o *order.Order)
		wantErr   error
	}

	tests := []testCase{
		{
			name:  "Success",
			items: []string{"A", "B"},
			setupMock: func(m *mocks, o *order.Order) {
				m.items.EXPECT().ResolveItemIDs(gomock.Any(), []string{"A", "B"}).Return([]uuid.UUID{listingA, listingB}, nil)
				m.holds.EXPECT().
					Acquire(gomock.Any(), hold.AcquireInput{
						ListingIDs: []uuid.UUID{listingA, listingB},
						BuyerID:    buyer,
						Actor:      "buyer:" + buyer.String(),
					}).
					Return(o, nil)
				m.provider.EXPECT().
					CreateCheckoutSession(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
						assert.Equal(t, o.ID, req.OrderID)
						assert.Equal(t, int64(3000), req.AmountCents)
						assert.Equal(t, "eur", req.Currency)
						assert.Len(t, req.Items, 2)
						assert.Equal(t, t0.Add(15*time.Minute), req.ExpiresAt)
						return &payment.Session{ID: "cs_1", URL: "https://pay.test/cs_1", Status: payment.SessionOpen}, nil
					})
				m.holds.EXPECT().AttachCheckoutSession(gomock.Any(), o.ID, "cs_1", "https://pay.test/cs_1").Return(nil)
			},
		},
		{
			name:      "NoItems",
			setupMock: func(_ *mocks, _ *order.Order) {},
			wantErr:   hold.ErrInvalidInput,
		},
		{
			name:  "ItemGone",
			items: []string{"A"},
			setupMock: func(m *mocks, _ *order.Order) {
				m.items.EXPECT().ResolveItemIDs(gomock.Any(), gomock.Any()).Return([]uuid.UUID{listingA}, nil)
				m.holds.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return(nil, hold.ErrConflict)
			},
			wantErr: hold.ErrConflict,
		},
		{
			name:  "ProviderDown",
			items: []string{"A"},
			setupMock: func(m *mocks, o *order.Order) {
				m.items.EXPECT().ResolveItemIDs(gomock.Any(), gomock.Any()).Return([]uuid.UUID{listingA}, nil)
				m.holds.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return(o, nil)
				m.provider.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).Return(nil, payment.ErrUnavailable)
				m.holds.EXPECT().
					Release(gomock.Any(), hold.ReleaseInput{
						OrderID: o.ID,
						Reason:  hold.ReasonCheckoutFailed,
						Actor:   "buyer:" + buyer.String(),
					}).
					Return(hold.ReleaseResult{ListingsReleased: 1, OrderCancelled: true}, nil)
			},
			wantErr: checkout.ErrProviderUnavailable,
		},
		{
			name:  "AttachFails",
			items: []string{"A"},
			setupMock: func(m *mocks, o *order.Order) {
				m.items.EXPECT().ResolveItemIDs(gomock.Any(), gomock.Any()).Return([]uuid.UUID{listingA}, nil)
				m.holds.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return(o, nil)
				m.provider.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).Return(&payment.Session{ID: "cs_2"}, nil)
				m.holds.EXPECT().AttachCheckoutSession(gomock.Any(), o.ID, "cs_2", "").Return(hold.ErrTransient)
				m.holds.EXPECT().Release(gomock.Any(), gomock.Any()).Return(hold.ReleaseResult{}, nil)
			},
			wantErr: hold.ErrTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			o := pendingOrder(buyer, listingA, listingB)
			tt.setupMock(m, o)

			got, err := svc.Start(context.Background(), checkout.StartInput{BuyerID: buyer, ItemIDs: tt.items})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "cs_1", got.CheckoutSessionID)
			assert.Equal(t, "https://pay.test/cs_1", got.CheckoutURL)
		})
	}
}

func TestService_Cancel(t *testing.T) {
	buyer := uuid.New()

	t.Run("Owner", func(t *testing.T) {
		svc, m := newService(t)
		o := pendingOrder(buyer, uuid.New())

		m.orders.EXPECT().Get(gomock.Any(), o.ID).Return(o, nil)
		m.holds.EXPECT().
			Release(gomock.Any(), hold.ReleaseInput{
				OrderID: o.ID,
				Reason:  hold.ReasonBuyerCancelled,
				Actor:   "buyer:" + buyer.String(),
			}).
			Return(hold.ReleaseResult{ListingsReleased: 1, OrderCancelled: true}, nil)

		require.NoError(t, svc.Cancel(context.Background(), o.ID, buyer))
	})

	t.Run("OtherBuyer", func(t *testing.T) {
		svc, m := newService(t)
		o := pendingOrder(buyer, uuid.New())

		m.orders.EXPECT().Get(gomock.Any(), o.ID).Return(o, nil)

		err := svc.Cancel(context.Background(), o.ID, uuid.New())
		require.ErrorIs(t, err, order.ErrNotFound)
	})
}

func TestService_Extend(t *testing.T) {
	svc, m := newService(t)
	buyer, orderID := uuid.New(), uuid.New()

	want := hold.ExtendResult{ExpiresAt: t0.Add(15 * time.Minute), Granted: 5 * time.Minute}
	m.holds.EXPECT().
		Extend(gomock.Any(), hold.ExtendInput{
			OrderID:   orderID,
			BuyerID:   buyer,
			Increment: 5 * time.Minute,
			Actor:     "buyer:" + buyer.String(),
		}).
		Return(want, nil)

	got, err := svc.Extend(context.Background(), orderID, buyer, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestService_Timer(t *testing.T) {
	buyer := uuid.New()

	type testCase struct {
		name          string
		advance       time.Duration
		expiresAt     time.Time
		status        order.Status
		wantExtend    bool
		wantRemaining time.Duration
	}

	tests := []testCase{
		{
			name:          "FreshCheckout",
			advance:       2 * time.Minute,
			expiresAt:     t0.Add(10 * time.Minute),
			status:        order.StatusPending,
			wantExtend:    true,
			wantRemaining: 8 * time.Minute,
		},
		{
			name:          "AtCeiling",
			advance:       12 * time.Minute,
			expiresAt:     t0.Add(15 * time.Minute),
			status:        order.StatusPending,
			wantExtend:    false,
			wantRemaining: 3 * time.Minute,
		},
		{
			name:      "Lapsed",
			advance:   11 * time.Minute,
			expiresAt: t0.Add(10 * time.Minute),
			status:    order.StatusPending,
		},
		{
			name:      "Paid",
			advance:   time.Minute,
			expiresAt: t0.Add(10 * time.Minute),
			status:    order.StatusPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			o := pendingOrder(buyer, uuid.New())
			o.Status = tt.status
			o.CheckoutExpiresAt = tt.expiresAt
			m.clock.Advance(tt.advance)

			m.orders.EXPECT().Get(gomock.Any(), o.ID).Return(o, nil)

			timer, err := svc.Timer(context.Background(), o.ID, buyer)
			require.NoError(t, err)
			assert.Equal(t, tt.wantExtend, timer.CanExtend)
			assert.Equal(t, tt.wantRemaining, timer.Remaining())
			assert.Equal(t, t0.Add(tt.advance), timer.ServerTime)
		})
	}
}

func TestService_TimerUnknownOrder(t *testing.T) {
	svc, m := newService(t)
	m.orders.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, order.ErrNotFound)

	_, err := svc.Timer(context.Background(), uuid.New(), uuid.New())
	assert.True(t, errors.Is(err, order.ErrNotFound))
}
