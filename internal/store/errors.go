package store

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrConflict is returned when a write would violate a uniqueness constraint.
var ErrConflict = errors.New("conflicting record exists")

// ErrPriceRange is returned for amounts that are not a whole number of cents
// or do not fit the cents column.
var ErrPriceRange = errors.New("price out of range")

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
