package booking_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restroo/internal/booking"
	"github.com/iliyamo/restroo/internal/model"
	"github.com/iliyamo/restroo/internal/repository"
	"github.com/iliyamo/restroo/internal/testutil"
)

func TestInventory_CreateValidatesAndIsUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := testutil.SeedUser(t, f.db, "kim", model.RoleCustomer, 0)

	create := func(total int) (*model.TableInventory, error) {
		tx, err := f.db.BeginTxx(ctx, nil)
		require.NoError(t, err)
		defer func(tx *sqlx.Tx) { _ = tx.Rollback() }(tx)
		inv, err := f.inv.Create(ctx, tx, c, total)
		if err == nil {
			require.NoError(t, tx.Commit())
		}
		return inv, err
	}

	_, err := create(-1)
	assert.ErrorIs(t, err, booking.ErrValidation)

	inv, err := create(7)
	require.NoError(t, err)
	assert.Equal(t, 7, inv.Total)
	assert.Equal(t, 7, inv.Available)

	_, err = create(3)
	assert.ErrorIs(t, err, repository.ErrInventoryExists)
}

func TestInventory_ReserveAndReleaseStayInBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := testutil.SeedUser(t, f.db, "kebab", model.RoleRestaurant, 4)

	require.NoError(t, f.inv.Reserve(ctx, r, 3))
	err := f.inv.Reserve(ctx, r, 2)
	assert.ErrorIs(t, err, booking.ErrInsufficientAvailability)

	inv, err := f.inv.Get(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, 1, inv.Available)
	assert.Equal(t, 3, inv.Booked())

	require.NoError(t, f.inv.Release(ctx, r, 10))
	total, available := testutil.Inventory(t, f.db, r)
	assert.Equal(t, total, available, "release never raises available above total")

	require.NoError(t, f.inv.Release(ctx, r, 1))
	_, available = testutil.Inventory(t, f.db, r)
	assert.Equal(t, 4, available)

	assert.ErrorIs(t, f.inv.Reserve(ctx, r, 0), booking.ErrValidation)
	assert.ErrorIs(t, f.inv.Release(ctx, r, -1), booking.ErrValidation)
}

func TestInventory_MissingRestaurant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inv.Get(ctx, 77)
	assert.ErrorIs(t, err, booking.ErrNoInventory)
	assert.ErrorIs(t, f.inv.Reserve(ctx, 77, 1), booking.ErrNoInventory)
	assert.ErrorIs(t, f.inv.Release(ctx, 77, 1), booking.ErrNoInventory)
}

func TestAvailabilityError_Messages(t *testing.T) {
	cases := []struct {
		err  booking.AvailabilityError
		want string
	}{
		{booking.AvailabilityError{Requested: 1, Available: 0, Total: 0}, "this restaurant has no tables to book"},
		{booking.AvailabilityError{Requested: 2, Available: 0, Total: 6}, "no tables are free right now"},
		{booking.AvailabilityError{Requested: 4, Available: 1, Total: 6}, "only 1 of the requested 4 tables are free"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.Error())
		assert.ErrorIs(t, &tc.err, booking.ErrInsufficientAvailability)
	}
}
