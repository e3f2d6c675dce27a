package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/restroo/internal/model"
)

// BookingRepo persists bookings.  Inserts and deletes only happen inside
// the ledger's transactions, together with the matching inventory change.
type BookingRepo struct {
	db *sqlx.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sqlx.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, customer_id, restaurant_id, table_count, created_at`

// CreateTx inserts a booking and fills in its ID and creation time.  The
// caller must commit or rollback the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, b *model.Booking) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (customer_id, restaurant_id, table_count, created_at) VALUES (?, ?, ?, ?)`,
		b.CustomerID, b.RestaurantID, b.TableCount, b.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// Get returns a booking by ID or ErrNotFound.
func (r *BookingRepo) Get(ctx context.Context, id uint64) (*model.Booking, error) {
	return getBooking(ctx, r.db, id)
}

// GetTx is Get within the scope of an existing transaction.
func (r *BookingRepo) GetTx(ctx context.Context, tx *sqlx.Tx, id uint64) (*model.Booking, error) {
	return getBooking(ctx, tx, id)
}

func getBooking(ctx context.Context, q sqlx.QueryerContext, id uint64) (*model.Booking, error) {
	var b model.Booking
	if err := sqlx.GetContext(ctx, q, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// DeleteTx removes a booking and reports whether a row was deleted.  Two
// concurrent cancellations of the same booking therefore see exactly one
// true between them.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sqlx.Tx, id uint64) (bool, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// BookingDetail is a booking joined with the display names of both
// parties, used by the listing endpoints.
type BookingDetail struct {
	model.Booking
	CustomerName   string `db:"customer_name" json:"customer_name"`
	RestaurantName string `db:"restaurant_name" json:"restaurant_name"`
}

const bookingDetailQuery = `SELECT b.id, b.customer_id, b.restaurant_id, b.table_count, b.created_at,
       c.name AS customer_name, r.name AS restaurant_name
  FROM bookings b
  JOIN users c ON c.id = b.customer_id
  JOIN users r ON r.id = b.restaurant_id`

// ListByCustomer returns the customer's active bookings, newest first.
func (r *BookingRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]BookingDetail, error) {
	out := make([]BookingDetail, 0)
	err := sqlx.SelectContext(ctx, r.db, &out,
		bookingDetailQuery+` WHERE b.customer_id = ? ORDER BY b.created_at DESC, b.id DESC`, customerID)
	return out, err
}

// ListByRestaurant returns the active bookings against a restaurant,
// newest first.
func (r *BookingRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]BookingDetail, error) {
	out := make([]BookingDetail, 0)
	err := sqlx.SelectContext(ctx, r.db, &out,
		bookingDetailQuery+` WHERE b.restaurant_id = ? ORDER BY b.created_at DESC, b.id DESC`, restaurantID)
	return out, err
}

// SumTablesByRestaurant returns the number of tables held by active
// bookings.  It is used by consistency checks against the inventory.
func (r *BookingRepo) SumTablesByRestaurant(ctx context.Context, restaurantID uint64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COALESCE(SUM(table_count), 0) FROM bookings WHERE restaurant_id = ?`, restaurantID)
	return n, err
}
