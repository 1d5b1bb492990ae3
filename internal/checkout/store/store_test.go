package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/consignd/internal/checkout/store"
	"github.com/MrJamesThe3rd/consignd/internal/database/dbtest"
)

func TestStore_MarkProcessed(t *testing.T) {
	s := store.New(dbtest.New(t))
	ctx := context.Background()

	seen, err := s.Processed(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.MarkProcessed(ctx, "evt_1", "checkout.session.completed"))
	require.NoError(t, s.MarkProcessed(ctx, "evt_1", "checkout.session.completed"))

	seen, err = s.Processed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)
}
