package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique code or number collides with an
	// existing record.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrSeatTaken is returned when an insert loses the race for a specific
	// (table, seat_number) pair.
	ErrSeatTaken = errors.New("persistence: seat taken")
	// ErrTableFull is returned when an assignment would exceed the table
	// capacity recorded at insert time.
	ErrTableFull = errors.New("persistence: table full")
	// ErrConstraintViolation is returned when a CHECK constraint rejects a
	// write (for example a non-positive capacity).
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
