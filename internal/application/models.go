package application

import "time"

// Principal represents the authenticated operator invoking a service method.
type Principal struct {
	SessionID string
	IsAdmin   bool
}

// RSVPStatus enumerates a guest's attendance confirmation state.
type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "pending"
	RSVPConfirmed RSVPStatus = "confirmed"
	RSVPDeclined  RSVPStatus = "declined"
)

// Valid reports whether the status is one of the known values.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPPending, RSVPConfirmed, RSVPDeclined:
		return true
	}
	return false
}

// Guest represents an invited person exposed by the application services.
type Guest struct {
	ID             string
	FirstName      string
	LastName       string
	Email          *string
	Phone          *string
	InvitationCode string
	GuestCode      string
	QRToken        string
	RSVPStatus     RSVPStatus
	PartySize      int
	Dietary        *string
	Notes          *string
	CheckedIn      bool
	CheckedInAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// GuestInput captures caller provided guest fields. InvitationCode,
// RSVPStatus and PartySize are optional; the service fills in defaults on
// create and keeps existing values on update.
type GuestInput struct {
	FirstName      string
	LastName       string
	Email          *string
	Phone          *string
	InvitationCode string
	RSVPStatus     RSVPStatus
	PartySize      *int
	Dietary        *string
	Notes          *string
}

// CreateGuestParams wraps the data required to create a guest.
type CreateGuestParams struct {
	Principal Principal
	Input     GuestInput
}

// UpdateGuestParams wraps the data required to update an existing guest.
type UpdateGuestParams struct {
	Principal Principal
	GuestID   string
	Input     GuestInput
}

// ListGuestsParams wraps the filters accepted by guest listings.
type ListGuestsParams struct {
	Principal  Principal
	Search     string
	RSVPStatus RSVPStatus
}

// Table represents a physical seating group exposed by the application
// services.
type Table struct {
	ID        string
	Number    int
	Name      *string
	Capacity  int
	VIP       bool
	Color     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableInput captures caller provided table fields.
type TableInput struct {
	Number   int
	Name     *string
	Capacity int
	VIP      bool
	Color    *string
}

// CreateTableParams wraps the data required to create a table.
type CreateTableParams struct {
	Principal Principal
	Input     TableInput
}

// UpdateTableParams wraps the data required to update a table.
type UpdateTableParams struct {
	Principal Principal
	TableID   string
	Input     TableInput
}

// SeatAssignment represents the binding of one guest to one seat.
type SeatAssignment struct {
	ID         string
	GuestID    string
	TableID    string
	SeatNumber int
	CreatedAt  time.Time
}

// AssignSeatParams wraps the data required to seat a guest. SeatNumber nil
// means "next free seat, ascending".
type AssignSeatParams struct {
	Principal  Principal
	GuestID    string
	TableID    string
	SeatNumber *int
}

// MoveGuestParams wraps the data required to move a guest to another table.
type MoveGuestParams struct {
	Principal Principal
	GuestID   string
	TableID   string
}

// MoveResult distinguishes an actual move from a no-op because the guest was
// already seated at the target table.
type MoveResult struct {
	Assignment     SeatAssignment
	AlreadyAtTable bool
}

// TableStatus is the per-table occupancy projection consumed by every
// screen. Available is clamped at zero when a capacity edit left a table
// over-occupied.
type TableStatus struct {
	Table     Table
	Occupied  int
	Available int
}

// GuestStatus is the per-guest assignment summary. Seat fields are nil for
// unseated guests; the check-in flag is read from the guest record.
type GuestStatus struct {
	Guest       Guest
	TableID     *string
	TableNumber *int
	SeatNumber  *int
}

// CheckInResult reports a check-in attempt. AlreadyCheckedIn is
// informational, not a failure: re-scanning a badge is safe and preserves
// the original timestamp.
type CheckInResult struct {
	Guest            Guest
	AlreadyCheckedIn bool
}

// ScanResult is what the scanner screens display after resolving a token.
type ScanResult struct {
	Guest            Guest
	TableNumber      *int
	SeatNumber       *int
	AlreadyCheckedIn bool
}

// RegisterGuestParams wraps the access-code gated public registration input.
type RegisterGuestParams struct {
	AccessCode string
	Input      GuestInput
}

// ConfirmRSVPParams wraps an attendance confirmation by invitation code.
// PartySize nil keeps the registered value.
type ConfirmRSVPParams struct {
	InvitationCode string
	Attending      bool
	PartySize      *int
	Dietary        *string
	Notes          *string
}

// AccessCode is a shared secret gating the public registration flow.
type AccessCode struct {
	ID        string
	Code      string
	Label     *string
	Active    bool
	CreatedAt time.Time
}

// Session represents an authenticated operator session.
type Session struct {
	ID        string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateResult captures the outcome of a successful login.
type AuthenticateResult struct {
	Session Session
}
