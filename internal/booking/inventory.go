package booking

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/restroo/internal/config"
	"github.com/iliyamo/restroo/internal/model"
	"github.com/iliyamo/restroo/internal/repository"
)

// Inventory owns the per-restaurant table counters.  Reserve and Release
// are the only ways the counters change after creation.
type Inventory struct {
	repo *repository.InventoryRepo
	tx   txRunner
}

// NewInventory wraps the repository with validation and the bounded
// transaction runner.
func NewInventory(repo *repository.InventoryRepo, cfg config.BookingConfig) *Inventory {
	return &Inventory{repo: repo, tx: newTxRunner(repo.DB(), cfg)}
}

// Create sets up a restaurant's inventory with every table available.  It
// runs inside the registration transaction so the account and its
// inventory appear together.
func (i *Inventory) Create(ctx context.Context, tx *sqlx.Tx, restaurantID uint64, totalTables int) (*model.TableInventory, error) {
	if totalTables < 0 {
		return nil, validationErr("table count must be a non-negative integer, got %d", totalTables)
	}
	return i.repo.CreateTx(ctx, tx, restaurantID, totalTables)
}

// Get returns the inventory of a restaurant or ErrNoInventory.
func (i *Inventory) Get(ctx context.Context, restaurantID uint64) (*model.TableInventory, error) {
	inv, err := i.repo.Get(ctx, restaurantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoInventory
	}
	return inv, err
}

// Reserve takes count tables in its own transaction.
func (i *Inventory) Reserve(ctx context.Context, restaurantID uint64, count int) error {
	return i.tx.run(ctx, "reserve", func(ctx context.Context, tx *sqlx.Tx) error {
		return i.ReserveTx(ctx, tx, restaurantID, count)
	})
}

// Release returns count tables in its own transaction.
func (i *Inventory) Release(ctx context.Context, restaurantID uint64, count int) error {
	return i.tx.run(ctx, "release", func(ctx context.Context, tx *sqlx.Tx) error {
		return i.ReleaseTx(ctx, tx, restaurantID, count)
	})
}

// ReserveTx atomically decrements availability by count.  On refusal
// nothing changes and the error is ErrNoInventory or an
// *AvailabilityError built from the row as seen inside tx.
func (i *Inventory) ReserveTx(ctx context.Context, tx *sqlx.Tx, restaurantID uint64, count int) error {
	if count <= 0 {
		return validationErr("requested table count must be positive, got %d", count)
	}
	ok, err := i.repo.ReserveTx(ctx, tx, restaurantID, count)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	inv, err := i.repo.GetTx(ctx, tx, restaurantID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNoInventory
	}
	if err != nil {
		return err
	}
	return &AvailabilityError{Requested: count, Available: inv.Available, Total: inv.Total}
}

// ReleaseTx increments availability by count, clamped to the total.
func (i *Inventory) ReleaseTx(ctx context.Context, tx *sqlx.Tx, restaurantID uint64, count int) error {
	if count <= 0 {
		return validationErr("released table count must be positive, got %d", count)
	}
	err := i.repo.ReleaseTx(ctx, tx, restaurantID, count)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNoInventory
	}
	return err
}
