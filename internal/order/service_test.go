package order_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/consignd/internal/order"
)

func TestService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := order.NewMockRepository(ctrl)

	found := &order.Order{ID: uuid.New(), Status: order.StatusPending}
	missing := uuid.New()

	mockRepo.EXPECT().GetOrder(gomock.Any(), found.ID).Return(found, nil)
	mockRepo.EXPECT().GetOrder(gomock.Any(), missing).Return(nil, order.ErrNotFound)

	svc := order.NewService(mockRepo)

	got, err := svc.Get(context.Background(), found.ID)
	require.NoError(t, err)
	assert.Equal(t, found, got)

	_, err = svc.Get(context.Background(), missing)
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestService_FindBySession(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := order.NewMockRepository(ctrl)

	o := &order.Order{ID: uuid.New(), CheckoutSessionID: "cs_1"}
	mockRepo.EXPECT().GetOrderBySession(gomock.Any(), "cs_1").Return(o, nil)

	got, err := order.NewService(mockRepo).FindBySession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		status   order.Status
		paid     bool
		terminal bool
	}{
		{order.StatusPending, false, false},
		{order.StatusPaid, true, false},
		{order.StatusShipped, true, false},
		{order.StatusFinalized, true, true},
		{order.StatusCancelled, false, true},
		{order.StatusRefunded, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.paid, tt.status.IsPaid())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}
