package listing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/consignd/internal/listing"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    listing.CreateParams
		setupMock func(m *listing.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: listing.CreateParams{ItemID: " SKU-1 ", Title: "Coat", PriceCents: 4500},
			setupMock: func(m *listing.MockRepository) {
				m.EXPECT().
					CreateListing(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, l *listing.Listing) error {
						assert.Equal(t, "SKU-1", l.ItemID)
						assert.Equal(t, listing.StatusActive, l.Status)
						assert.False(t, l.IsHeld)
						l.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name:      "MissingItemID",
			params:    listing.CreateParams{ItemID: "  ", PriceCents: 100},
			setupMock: func(_ *listing.MockRepository) {},
			wantErr:   listing.ErrInvalidListing,
		},
		{
			name:      "NonPositivePrice",
			params:    listing.CreateParams{ItemID: "SKU-2"},
			setupMock: func(_ *listing.MockRepository) {},
			wantErr:   listing.ErrInvalidListing,
		},
		{
			name:   "Duplicate",
			params: listing.CreateParams{ItemID: "SKU-3", PriceCents: 100},
			setupMock: func(m *listing.MockRepository) {
				m.EXPECT().CreateListing(gomock.Any(), gomock.Any()).Return(listing.ErrDuplicateItemID)
			},
			wantErr: listing.ErrDuplicateItemID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockRepo := listing.NewMockRepository(ctrl)
			tt.setupMock(mockRepo)

			svc := listing.NewService(mockRepo, nil)

			got, err := svc.Create(context.Background(), tt.params)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_ListFreshensFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := listing.NewMockRepository(ctrl)
	mockFresh := listing.NewMockFreshener(ctrl)

	active := listing.StatusActive
	filter := listing.ListFilter{Status: &active, Limit: 10}

	gomock.InOrder(
		mockFresh.EXPECT().SweepIfDue(gomock.Any()),
		mockRepo.EXPECT().ListListings(gomock.Any(), filter).Return([]*listing.Listing{{ItemID: "A"}}, nil),
	)

	svc := listing.NewService(mockRepo, mockFresh)

	got, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_GetByItemIDFreshensFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := listing.NewMockRepository(ctrl)
	mockFresh := listing.NewMockFreshener(ctrl)

	gomock.InOrder(
		mockFresh.EXPECT().SweepIfDue(gomock.Any()),
		mockRepo.EXPECT().GetListingByItemID(gomock.Any(), "A").Return(&listing.Listing{ItemID: "A"}, nil),
	)

	svc := listing.NewService(mockRepo, mockFresh)

	got, err := svc.GetByItemID(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "A", got.ItemID)
}

func TestService_ResolveItemIDs(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := listing.NewMockRepository(ctrl)

	idA := uuid.New()
	mockRepo.EXPECT().GetListingByItemID(gomock.Any(), "A").Return(&listing.Listing{ID: idA}, nil)
	mockRepo.EXPECT().GetListingByItemID(gomock.Any(), "B").Return(nil, listing.ErrNotFound)

	svc := listing.NewService(mockRepo, nil)

	_, err := svc.ResolveItemIDs(context.Background(), []string{"A", "B"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, listing.ErrNotFound))
	assert.Contains(t, err.Error(), "item B")
}
