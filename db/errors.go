package db

import (
	"errors"
)

var (
	// ErrNotFound is returned by Get and Update when the
	// requested record does not exist
	ErrNotFound = errors.New("no such key")
	// ErrNestedTransaction is returned by Atomic when the
	// context already carries an active transaction for
	// the same database
	ErrNestedTransaction = errors.New("nested atomic operations are not allowed")
	// ErrNoSuchTable is returned when looking up a table
	// that was not declared
	ErrNoSuchTable = errors.New("no such table")
)
