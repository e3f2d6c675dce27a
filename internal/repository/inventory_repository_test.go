package repository_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restroo/internal/model"
	"github.com/iliyamo/restroo/internal/repository"
	"github.com/iliyamo/restroo/internal/testutil"
)

// A reserve that read the counter and wrote it back could lose an update
// under MySQL row locking, even though SQLite would serialize it.  The
// check has to live in the one UPDATE that changes the row.
func TestInventoryRepo_ReserveIsOneConditionalUpdate(t *testing.T) {
	db, log := testutil.NewRecordingDB(t)
	repo := repository.NewInventoryRepo(db)
	ctx := context.Background()
	r := testutil.SeedUser(t, db, "bistro", model.RoleRestaurant, 3)

	reserve := func(count int) (bool, []string) {
		tx, err := db.BeginTxx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback()
		log.Reset()
		ok, err := repo.ReserveTx(ctx, tx, r, count)
		require.NoError(t, err)
		stmts := log.Statements()
		require.NoError(t, tx.Commit())
		return ok, stmts
	}

	for _, tc := range []struct {
		count     int
		ok        bool
		available int
	}{
		{count: 2, ok: true, available: 1},
		{count: 2, ok: false, available: 1},
		{count: 1, ok: true, available: 0},
		{count: 1, ok: false, available: 0},
	} {
		ok, stmts := reserve(tc.count)
		assert.Equal(t, tc.ok, ok, "reserve %d", tc.count)
		require.Len(t, stmts, 1, "reserve must not read before it writes")
		q := strings.Join(strings.Fields(stmts[0]), " ")
		assert.True(t, strings.HasPrefix(q, "UPDATE restaurant_tables"), q)
		assert.Contains(t, q, "available = available - ?")
		assert.Contains(t, q, "available >= ?")

		total, available := testutil.Inventory(t, db, r)
		assert.Equal(t, 3, total)
		assert.Equal(t, tc.available, available)
	}
}

func TestInventoryRepo_ReleaseClampsAtTotal(t *testing.T) {
	db, log := testutil.NewRecordingDB(t)
	repo := repository.NewInventoryRepo(db)
	ctx := context.Background()
	r := testutil.SeedUser(t, db, "deli", model.RoleRestaurant, 2)

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	log.Reset()
	require.NoError(t, repo.ReleaseTx(ctx, tx, r, 5))
	require.Len(t, log.Statements(), 1)
	assert.ErrorIs(t, repo.ReleaseTx(ctx, tx, 9999, 1), repository.ErrNotFound)
	require.NoError(t, tx.Commit())

	total, available := testutil.Inventory(t, db, r)
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, available)
}
