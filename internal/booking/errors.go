package booking

import (
	"errors"
	"fmt"

	"github.com/iliyamo/restroo/internal/repository"
)

var (
	// ErrValidation reports malformed input such as a non-positive table
	// count.  It is never retried.
	ErrValidation = errors.New("invalid booking input")

	// ErrNoInventory means the target has no table inventory, which is
	// the case for every non-restaurant account.
	ErrNoInventory = errors.New("restaurant has no table inventory")

	// ErrInsufficientAvailability means fewer tables are free than were
	// requested.  Rejections carry an *AvailabilityError that matches it.
	ErrInsufficientAvailability = errors.New("not enough tables available")

	// ErrBusy is returned when the inventory row stayed locked through
	// every retry.  Callers may try again later.
	ErrBusy = errors.New("booking system busy, try again")

	// ErrNotFound and ErrForbidden are shared with the repositories so
	// handlers map them the same way everywhere.
	ErrNotFound  = repository.ErrNotFound
	ErrForbidden = repository.ErrForbidden
)

// AvailabilityError describes a refused reservation.  The message tells a
// restaurant without any tables apart from one that is merely full.
type AvailabilityError struct {
	Requested int
	Available int
	Total     int
}

func (e *AvailabilityError) Error() string {
	switch {
	case e.Total == 0:
		return "this restaurant has no tables to book"
	case e.Available <= 0:
		return "no tables are free right now"
	default:
		return fmt.Sprintf("only %d of the requested %d tables are free", e.Available, e.Requested)
	}
}

func (e *AvailabilityError) Is(target error) bool { return target == ErrInsufficientAvailability }

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
