package booking_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restroo/internal/booking"
	"github.com/iliyamo/restroo/internal/config"
	"github.com/iliyamo/restroo/internal/model"
	"github.com/iliyamo/restroo/internal/queue"
	"github.com/iliyamo/restroo/internal/repository"
	"github.com/iliyamo/restroo/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
}

func (p *recordingPublisher) PublishBookingEvent(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type fixture struct {
	db       *sqlx.DB
	ledger   *booking.Ledger
	inv      *booking.Inventory
	bookings *repository.BookingRepo
	events   *recordingPublisher
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := config.BookingConfig{LockTimeout: 5 * time.Second, MaxRetries: 2, RetryBackoff: time.Millisecond}
	inv := booking.NewInventory(repository.NewInventoryRepo(db), cfg)
	bookings := repository.NewBookingRepo(db)
	pub := &recordingPublisher{}
	return fixture{
		db:       db,
		ledger:   booking.NewLedger(db, inv, bookings, cfg, pub),
		inv:      inv,
		bookings: bookings,
		events:   pub,
	}
}

func (f fixture) available(t *testing.T, restaurantID uint64) int {
	t.Helper()
	_, available := testutil.Inventory(t, f.db, restaurantID)
	return available
}

func TestLedger_BookRejectCancelScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := testutil.SeedUser(t, f.db, "trattoria", model.RoleRestaurant, 5)
	a := testutil.SeedUser(t, f.db, "alice", model.RoleCustomer, 0)
	b := testutil.SeedUser(t, f.db, "bob", model.RoleCustomer, 0)

	bookingA, err := f.ledger.CreateBooking(ctx, a, r, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, bookingA.TableCount)
	assert.NotZero(t, bookingA.ID)
	assert.Equal(t, 3, f.available(t, r))

	_, err = f.ledger.CreateBooking(ctx, b, r, 4)
	require.ErrorIs(t, err, booking.ErrInsufficientAvailability)
	var avail *booking.AvailabilityError
	require.True(t, errors.As(err, &avail))
	assert.Equal(t, 3, avail.Available)
	assert.Equal(t, 4, avail.Requested)
	assert.Equal(t, 3, f.available(t, r))

	_, err = f.ledger.CancelBooking(ctx, r, bookingA.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, f.available(t, r))

	_, err = f.bookings.Get(ctx, bookingA.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.Len(t, f.events.events, 2)
	assert.Equal(t, queue.EventBookingCreated, f.events.events[0].Type)
	assert.Equal(t, 3, f.events.events[0].Available)
	assert.Equal(t, queue.EventBookingCancelled, f.events.events[1].Type)
	assert.Equal(t, 5, f.events.events[1].Available)
}

func TestLedger_CreateThenCancelRestoresAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := testutil.SeedUser(t, f.db, "bistro", model.RoleRestaurant, 8)
	c := testutil.SeedUser(t, f.db, "carol", model.RoleCustomer, 0)

	for _, n := range []int{1, 3, 8} {
		before := f.available(t, r)
		b, err := f.ledger.CreateBooking(ctx, c, r, n)
		require.NoError(t, err, "booking %d tables", n)
		assert.Equal(t, before-n, f.available(t, r))

		_, err = f.ledger.CancelBooking(ctx, r, b.ID)
		require.NoError(t, err)
		assert.Equal(t, before, f.available(t, r))
	}
}

func TestLedger_ConcurrentBookingsNeverOverbook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const tables = 5
	const callers = 20
	r := testutil.SeedUser(t, f.db, "diner", model.RoleRestaurant, tables)
	c := testutil.SeedUser(t, f.db, "dave", model.RoleCustomer, 0)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		refused   int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.CreateBooking(ctx, c, r, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, booking.ErrInsufficientAvailability):
				refused++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, tables, succeeded)
	assert.Equal(t, callers-tables, refused)
	assert.Equal(t, 0, f.available(t, r))

	held, err := f.bookings.SumTablesByRestaurant(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, tables, held)
}

func TestLedger_CancelByNonOwnerIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := testutil.SeedUser(t, f.db, "osteria", model.RoleRestaurant, 4)
	other := testutil.SeedUser(t, f.db, "pizzeria", model.RoleRestaurant, 4)
	c := testutil.SeedUser(t, f.db, "erin", model.RoleCustomer, 0)

	b, err := f.ledger.CreateBooking(ctx, c, r, 2)
	require.NoError(t, err)

	for _, requester := range []uint64{c, other} {
		_, err := f.ledger.CancelBooking(ctx, requester, b.ID)
		assert.ErrorIs(t, err, booking.ErrForbidden)
	}

	assert.Equal(t, 2, f.available(t, r))
	assert.Equal(t, 4, f.available(t, other))
	got, err := f.bookings.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TableCount)
}

func TestLedger_CancelUnknownOrCancelledBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := testutil.SeedUser(t, f.db, "grill", model.RoleRestaurant, 3)
	c := testutil.SeedUser(t, f.db, "frank", model.RoleCustomer, 0)

	_, err := f.ledger.CancelBooking(ctx, r, 999)
	assert.ErrorIs(t, err, booking.ErrNotFound)

	b, err := f.ledger.CreateBooking(ctx, c, r, 1)
	require.NoError(t, err)
	_, err = f.ledger.CancelBooking(ctx, r, b.ID)
	require.NoError(t, err)
	_, err = f.ledger.CancelBooking(ctx, r, b.ID)
	assert.ErrorIs(t, err, booking.ErrNotFound)
	assert.Equal(t, 3, f.available(t, r))
}

func TestLedger_CreateRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := testutil.SeedUser(t, f.db, "cafe", model.RoleRestaurant, 2)
	empty := testutil.SeedUser(t, f.db, "popup", model.RoleRestaurant, 0)
	c := testutil.SeedUser(t, f.db, "gina", model.RoleCustomer, 0)
	c2 := testutil.SeedUser(t, f.db, "hank", model.RoleCustomer, 0)

	_, err := f.ledger.CreateBooking(ctx, c, r, 0)
	assert.ErrorIs(t, err, booking.ErrValidation)
	_, err = f.ledger.CreateBooking(ctx, c, r, -3)
	assert.ErrorIs(t, err, booking.ErrValidation)
	_, err = f.ledger.CreateBooking(ctx, r, r, 1)
	assert.ErrorIs(t, err, booking.ErrValidation)

	_, err = f.ledger.CreateBooking(ctx, c, c2, 1)
	assert.ErrorIs(t, err, booking.ErrNoInventory)

	_, err = f.ledger.CreateBooking(ctx, c, empty, 1)
	require.ErrorIs(t, err, booking.ErrInsufficientAvailability)
	assert.Equal(t, "this restaurant has no tables to book", err.Error())

	_, err = f.ledger.CreateBooking(ctx, c, r, 2)
	require.NoError(t, err)
	_, err = f.ledger.CreateBooking(ctx, c2, r, 1)
	require.ErrorIs(t, err, booking.ErrInsufficientAvailability)
	assert.Equal(t, "no tables are free right now", err.Error())

	assert.Equal(t, 0, f.available(t, r))
	assert.Empty(t, f.events.events[1:])
}

func TestLedger_FailedInsertRollsBackReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := testutil.SeedUser(t, f.db, "noodles", model.RoleRestaurant, 4)

	// Customer 4242 does not exist, so the booking insert fails on its
	// foreign key after the tables were already reserved.
	_, err := f.ledger.CreateBooking(ctx, 4242, r, 3)
	require.Error(t, err)
	assert.Equal(t, 4, f.available(t, r))
}

func TestLedger_LockTimeoutSurfacesAsBusy(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := config.BookingConfig{LockTimeout: time.Nanosecond, MaxRetries: 2, RetryBackoff: time.Millisecond}
	inv := booking.NewInventory(repository.NewInventoryRepo(db), cfg)
	ledger := booking.NewLedger(db, inv, repository.NewBookingRepo(db), cfg, nil)
	r := testutil.SeedUser(t, db, "sushi", model.RoleRestaurant, 2)
	c := testutil.SeedUser(t, db, "ivy", model.RoleCustomer, 0)

	_, err := ledger.CreateBooking(context.Background(), c, r, 1)
	assert.ErrorIs(t, err, booking.ErrBusy)
	_, available := testutil.Inventory(t, db, r)
	assert.Equal(t, 2, available)
}

func TestLedger_Listings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := testutil.SeedUser(t, f.db, "tapas", model.RoleRestaurant, 6)
	c := testutil.SeedUser(t, f.db, "jane", model.RoleCustomer, 0)

	_, err := f.ledger.CreateBooking(ctx, c, r, 1)
	require.NoError(t, err)
	_, err = f.ledger.CreateBooking(ctx, c, r, 2)
	require.NoError(t, err)

	mine, err := f.ledger.ListForCustomer(ctx, c)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "tapas", mine[0].RestaurantName)

	theirs, err := f.ledger.ListForRestaurant(ctx, r)
	require.NoError(t, err)
	require.Len(t, theirs, 2)
	assert.Equal(t, "jane", theirs[0].CustomerName)
}

func TestLedger_InventoryIsNeverWrittenFromARead(t *testing.T) {
	db, log := testutil.NewRecordingDB(t)
	cfg := config.BookingConfig{LockTimeout: 5 * time.Second, MaxRetries: 2, RetryBackoff: time.Millisecond}
	inv := booking.NewInventory(repository.NewInventoryRepo(db), cfg)
	ledger := booking.NewLedger(db, inv, repository.NewBookingRepo(db), cfg, &recordingPublisher{})
	ctx := context.Background()
	r := testutil.SeedUser(t, db, "grill", model.RoleRestaurant, 4)
	c := testutil.SeedUser(t, db, "cara", model.RoleCustomer, 0)

	log.Reset()
	b, err := ledger.CreateBooking(ctx, c, r, 3)
	require.NoError(t, err)
	_, err = ledger.CreateBooking(ctx, c, r, 2)
	require.ErrorIs(t, err, booking.ErrInsufficientAvailability)
	_, err = ledger.CancelBooking(ctx, r, b.ID)
	require.NoError(t, err)

	var writes []string
	for _, q := range log.Statements() {
		q = strings.Join(strings.Fields(q), " ")
		if strings.HasPrefix(q, "UPDATE restaurant_tables") {
			writes = append(writes, q)
		}
	}
	require.Len(t, writes, 3)
	for _, q := range writes {
		assert.NotContains(t, q, "available = ?", "absolute write of a counter read earlier")
	}
	assert.Contains(t, writes[0], "available >= ?")
	assert.Contains(t, writes[1], "available >= ?")
	assert.Contains(t, writes[2], "CASE WHEN available + ? > total")

	_, available := testutil.Inventory(t, db, r)
	assert.Equal(t, 4, available)
}
