// Package repository defines the data access layer and the error types
// that are reused across repositories.  These sentinel values allow higher
// layers such as handlers and the booking ledger to distinguish between
// different failure scenarios.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrNotFound is returned when the requested row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists and ErrUsernameExists report a unique key violation on
// the users table.  Handlers translate them into HTTP 409.
var (
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
)

// ErrInventoryExists is returned when a second table inventory is created
// for the same restaurant.
var ErrInventoryExists = errors.New("table inventory already exists")

// MySQL server error numbers the repositories and the ledger react to.
const (
	mysqlDuplicateEntry   = 1062
	MySQLLockWaitTimeout  = 1205
	MySQLDeadlockDetected = 1213
)

// notFound maps sql.ErrNoRows to ErrNotFound and passes other errors
// through unchanged.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// isDuplicate reports whether err is a unique key violation.  The SQLite
// message check keeps the repositories usable against the test database.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// duplicateColumn guesses which unique key was hit from the driver
// message so callers can report email and username clashes separately.
func duplicateColumn(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "email"):
		return "email"
	case strings.Contains(msg, "username"):
		return "username"
	case strings.Contains(msg, "restaurant"):
		return "restaurant_id"
	}
	return ""
}

// IsTransient reports whether err is lock contention that is worth
// retrying: an InnoDB lock wait timeout or deadlock, or a busy SQLite
// database.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == MySQLLockWaitTimeout || me.Number == MySQLDeadlockDetected
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
