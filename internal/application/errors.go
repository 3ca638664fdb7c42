package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission
	// for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrDuplicateCode is returned when an invitation code or guest code
	// collides with an existing guest, or a table number with an existing
	// table.
	ErrDuplicateCode = errors.New("application: duplicate code")
	// ErrTableFull is returned when a table has no free seat at assignment
	// time.
	ErrTableFull = errors.New("application: table full")
	// ErrSeatTaken is returned when a concurrent assignment claimed the
	// requested seat first. Callers surface it to the user; there is no
	// automatic retry.
	ErrSeatTaken = errors.New("application: seat taken")
	// ErrTableOccupied is returned when a table cannot be deleted or shrunk
	// because guests are still seated at it.
	ErrTableOccupied = errors.New("application: table occupied")
	// ErrInvalidToken is returned when a scanned QR payload or guest code
	// resolves to no guest.
	ErrInvalidToken = errors.New("application: invalid token")
	// ErrInvalidAccessCode is returned when the RSVP gate rejects a shared
	// secret (unknown or deactivated).
	ErrInvalidAccessCode = errors.New("application: invalid access code")
	// ErrInvalidInvitationCode is returned when a per-guest invitation code
	// resolves to no guest.
	ErrInvalidInvitationCode = errors.New("application: invalid invitation code")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when a session token has passed its TTL.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a session token was revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
