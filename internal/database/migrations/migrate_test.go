package migrations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/consignd/internal/database/dbtest"
	"github.com/MrJamesThe3rd/consignd/internal/database/migrations"
)

func TestApply_IsRepeatable(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	var before int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&before))
	assert.GreaterOrEqual(t, before, 2)

	require.NoError(t, migrations.Apply(ctx, db))

	var after int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&after))
	assert.Equal(t, before, after)
}
