package persistence

import "time"

// Guest represents an invited person (and their named party) stored durably.
type Guest struct {
	ID             string
	FirstName      string
	LastName       string
	Email          *string
	Phone          *string
	InvitationCode string
	GuestCode      string
	QRToken        string
	RSVPStatus     string
	PartySize      int
	Dietary        *string
	Notes          *string
	CheckedIn      bool
	CheckedInAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Table represents a physical seating group with fixed capacity.
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

// SeatAssignment binds one guest to one seat at one table. At most one
// active assignment exists per guest, and seat numbers are unique per table;
// both invariants live in unique indexes, not in application code.
type SeatAssignment struct {
	ID         string
	GuestID    string
	TableID    string
	SeatNumber int
	CreatedAt  time.Time
}

// AccessCode is a shared secret gating the public RSVP registration flow.
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

// TableOccupancy is the per-table projection consumed by the occupancy view.
type TableOccupancy struct {
	Table    Table
	Occupied int
}

// GuestSeat is the per-guest projection consumed by the status view. Seat
// fields are nil for guests without an active assignment.
type GuestSeat struct {
	Guest       Guest
	TableID     *string
	TableNumber *int
	SeatNumber  *int
}
