// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// rental ledger and the HTTP handlers to distinguish between different
// failure scenarios without inspecting driver errors themselves.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// Not-found sentinels, one per table.  Handlers translate these into
// HTTP 404 responses.
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrGenreNotFound    = errors.New("genre not found")
	ErrMovieNotFound    = errors.New("movie not found")
	ErrRentalNotFound   = errors.New("rental not found")
	ErrUserNotFound     = errors.New("user not found")
)

// ErrOutOfStock is returned by MovieRepo.AdjustStockTx when applying the
// delta would take number_in_stock below zero.
var ErrOutOfStock = errors.New("movie out of stock")

// ErrConflict is returned when the database aborted a statement because
// of lock contention (deadlock or lock wait timeout).  The operation
// can be retried.
var ErrConflict = errors.New("conflict")

// ErrHasOpenRentals is returned when deleting a movie that still has
// copies out with customers.
var ErrHasOpenRentals = errors.New("movie has open rentals")

// ErrEmailExists is returned when registering an email that is taken.
var ErrEmailExists = errors.New("email already exists")

// MySQL server error numbers the repositories react to.
const (
	mysqlDuplicateEntry  = 1062
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// Classify maps driver errors onto the package sentinels.  Errors it
// does not recognise are returned unchanged.
func Classify(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case mysqlDeadlock, mysqlLockWaitTimeout:
		return errors.Join(ErrConflict, err)
	}
	return err
}

// isDuplicate reports whether err is a unique key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
