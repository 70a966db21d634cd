// Package repository defines data access for shows, seats and bookings,
// along with the sentinel errors shared across repositories.  Status
// changes are always conditional updates whose affected-row counts are
// returned to the caller.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrShowNotFound indicates that a show was not located in the DB.
var ErrShowNotFound = errors.New("show not found")

// ErrBookingNotFound indicates that a booking was not located in the DB.
var ErrBookingNotFound = errors.New("booking not found")

// MySQL error numbers raised when two transactions contend for the same
// seat rows.
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// IsLockConflict reports whether err is a lock wait timeout or deadlock.
// Both mean the transaction lost a race for a row and was rolled back by
// the server.
func IsLockConflict(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == mysqlDeadlock || me.Number == mysqlLockWaitTimeout
}
