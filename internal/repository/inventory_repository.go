package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/restroo/internal/model"
)

// InventoryRepo reads and mutates the restaurant_tables rows.  Every
// mutation is a single conditional UPDATE so the availability check and
// the change happen atomically inside the database; no caller ever reads
// the counter and writes it back.
type InventoryRepo struct {
	db *sqlx.DB
}

// NewInventoryRepo returns a new InventoryRepo bound to the given database.
func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions.
func (r *InventoryRepo) DB() *sqlx.DB { return r.db }

const inventoryColumns = `id, restaurant_id, total, available`

// CreateTx inserts the inventory row for a freshly registered restaurant
// with every table available.  A second row for the same restaurant
// violates the unique key and yields ErrInventoryExists.
func (r *InventoryRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, restaurantID uint64, total int) (*model.TableInventory, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO restaurant_tables (restaurant_id, total, available) VALUES (?, ?, ?)`,
		restaurantID, total, total)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrInventoryExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.TableInventory{ID: uint64(id), RestaurantID: restaurantID, Total: total, Available: total}, nil
}

// Get returns the inventory of a restaurant or ErrNotFound.
func (r *InventoryRepo) Get(ctx context.Context, restaurantID uint64) (*model.TableInventory, error) {
	return getInventory(ctx, r.db, restaurantID)
}

// GetTx is Get within the scope of an existing transaction.
func (r *InventoryRepo) GetTx(ctx context.Context, tx *sqlx.Tx, restaurantID uint64) (*model.TableInventory, error) {
	return getInventory(ctx, tx, restaurantID)
}

func getInventory(ctx context.Context, q sqlx.QueryerContext, restaurantID uint64) (*model.TableInventory, error) {
	var inv model.TableInventory
	err := sqlx.GetContext(ctx, q, &inv,
		`SELECT `+inventoryColumns+` FROM restaurant_tables WHERE restaurant_id = ?`, restaurantID)
	if err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

// ReserveTx takes count tables if at least that many are available.  The
// check and the decrement are one statement, so two concurrent callers
// can never both succeed on the last table.  It reports false, with no
// change made, when the row is missing or availability is too low.
func (r *InventoryRepo) ReserveTx(ctx context.Context, tx *sqlx.Tx, restaurantID uint64, count int) (bool, error) {
	if count <= 0 {
		return false, fmt.Errorf("reserve: count must be positive, got %d", count)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE restaurant_tables SET available = available - ? WHERE restaurant_id = ? AND available >= ?`,
		count, restaurantID, count)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseTx gives count tables back, never raising available above total.
// It returns ErrNotFound when the restaurant has no inventory row.
func (r *InventoryRepo) ReleaseTx(ctx context.Context, tx *sqlx.Tx, restaurantID uint64, count int) error {
	if count <= 0 {
		return fmt.Errorf("release: count must be positive, got %d", count)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE restaurant_tables
		    SET available = CASE WHEN available + ? > total THEN total ELSE available + ? END
		  WHERE restaurant_id = ?`,
		count, count, restaurantID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
