package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/restroo/internal/config"
	"github.com/iliyamo/restroo/internal/metrics"
	"github.com/iliyamo/restroo/internal/model"
	"github.com/iliyamo/restroo/internal/queue"
	"github.com/iliyamo/restroo/internal/repository"
)

// Publisher receives booking events after the ledger commits.
type Publisher interface {
	PublishBookingEvent(ctx context.Context, ev queue.BookingEvent) error
}

// Ledger creates and cancels bookings.  Each operation changes the
// booking row and the inventory counter in the same transaction, so the
// sum of active bookings always equals total - available.
type Ledger struct {
	inventory *Inventory
	bookings  *repository.BookingRepo
	tx        txRunner
	events    Publisher
}

// NewLedger wires the ledger.  events may be nil, in which case nothing
// is published.
func NewLedger(db *sqlx.DB, inventory *Inventory, bookings *repository.BookingRepo, cfg config.BookingConfig, events Publisher) *Ledger {
	return &Ledger{inventory: inventory, bookings: bookings, tx: newTxRunner(db, cfg), events: events}
}

// CreateBooking reserves requested tables at the restaurant for the
// customer and records the booking.  If the insert fails after the
// reservation, the rollback restores the reserved tables.
func (l *Ledger) CreateBooking(ctx context.Context, customerID, restaurantID uint64, requested int) (*model.Booking, error) {
	if requested <= 0 {
		metrics.BookingsRejected.WithLabelValues("validation").Inc()
		return nil, validationErr("requested table count must be positive, got %d", requested)
	}
	if customerID == restaurantID {
		metrics.BookingsRejected.WithLabelValues("validation").Inc()
		return nil, validationErr("a restaurant cannot book its own tables")
	}

	var (
		b   *model.Booking
		inv *model.TableInventory
	)
	err := l.tx.run(ctx, "create_booking", func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := l.inventory.repo.GetTx(ctx, tx, restaurantID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoInventory
			}
			return err
		}
		if err := l.inventory.ReserveTx(ctx, tx, restaurantID, requested); err != nil {
			return err
		}
		b = &model.Booking{CustomerID: customerID, RestaurantID: restaurantID, TableCount: requested}
		if err := l.bookings.CreateTx(ctx, tx, b); err != nil {
			return err
		}
		var err error
		inv, err = l.inventory.repo.GetTx(ctx, tx, restaurantID)
		return err
	})
	if err != nil {
		metrics.BookingsRejected.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}

	metrics.BookingsCreated.Inc()
	metrics.TablesBooked.Add(float64(requested))
	l.publish(ctx, queue.EventBookingCreated, b, inv, customerID)
	return b, nil
}

// CancelBooking removes a booking and returns its tables.  Only the
// restaurant the booking was made at may cancel it; the customer who
// made it may not.
func (l *Ledger) CancelBooking(ctx context.Context, requesterID, bookingID uint64) (*model.Booking, error) {
	var (
		b   *model.Booking
		inv *model.TableInventory
	)
	err := l.tx.run(ctx, "cancel_booking", func(ctx context.Context, tx *sqlx.Tx) error {
		var err error
		b, err = l.bookings.GetTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.RestaurantID != requesterID {
			return ErrForbidden
		}
		deleted, err := l.bookings.DeleteTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFound
		}
		if err := l.inventory.ReleaseTx(ctx, tx, b.RestaurantID, b.TableCount); err != nil {
			return err
		}
		inv, err = l.inventory.repo.GetTx(ctx, tx, b.RestaurantID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingsCancelled.Inc()
	l.publish(ctx, queue.EventBookingCancelled, b, inv, requesterID)
	return b, nil
}

// Get returns a booking by ID.
func (l *Ledger) Get(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	return l.bookings.Get(ctx, bookingID)
}

// ListForCustomer returns the customer's active bookings.
func (l *Ledger) ListForCustomer(ctx context.Context, customerID uint64) ([]repository.BookingDetail, error) {
	return l.bookings.ListByCustomer(ctx, customerID)
}

// ListForRestaurant returns the active bookings held against a restaurant.
func (l *Ledger) ListForRestaurant(ctx context.Context, restaurantID uint64) ([]repository.BookingDetail, error) {
	return l.bookings.ListByRestaurant(ctx, restaurantID)
}

func (l *Ledger) publish(ctx context.Context, typ string, b *model.Booking, inv *model.TableInventory, actor uint64) {
	if l.events == nil {
		return
	}
	ev := queue.BookingEvent{
		Type:         typ,
		BookingID:    b.ID,
		CustomerID:   b.CustomerID,
		RestaurantID: b.RestaurantID,
		TableCount:   b.TableCount,
		ActorID:      actor,
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if inv != nil {
		ev.Available = inv.Available
		ev.Total = inv.Total
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := l.events.PublishBookingEvent(pctx, ev); err != nil {
		log.Printf("ledger: publish %s for booking %d failed: %v", typ, b.ID, err)
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrNoInventory):
		return "no_inventory"
	case errors.Is(err, ErrInsufficientAvailability):
		return "insufficient"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrBusy):
		return "busy"
	}
	return "error"
}
