package persistence

import (
	"context"
	"time"
)

// GuestFilter narrows guest listings. Search matches name, email,
// invitation code and guest code case-insensitively.
type GuestFilter struct {
	Search     string
	RSVPStatus string
}

// GuestRepository exposes CRUD and lookup operations for guests.
type GuestRepository interface {
	CreateGuest(ctx context.Context, guest Guest) error
	UpdateGuest(ctx context.Context, guest Guest) error
	GetGuest(ctx context.Context, id string) (Guest, error)
	GetGuestByInvitationCode(ctx context.Context, code string) (Guest, error)
	GetGuestByGuestCode(ctx context.Context, code string) (Guest, error)
	GetGuestByQRToken(ctx context.Context, token string) (Guest, error)
	ListGuests(ctx context.Context, filter GuestFilter) ([]Guest, error)
	// DeleteGuest removes the guest and its active seat assignment in one
	// transaction so no orphaned assignment can remain.
	DeleteGuest(ctx context.Context, id string) error
	// SetPresence updates the check-in flag and timestamp on the guest record,
	// the canonical owner of presence state.
	SetPresence(ctx context.Context, id string, checkedIn bool, at *time.Time) error
}

// TableRepository exposes CRUD operations for tables.
type TableRepository interface {
	CreateTable(ctx context.Context, table Table) error
	UpdateTable(ctx context.Context, table Table) error
	GetTable(ctx context.Context, id string) (Table, error)
	ListTables(ctx context.Context) ([]Table, error)
	DeleteTable(ctx context.Context, id string) error
}

// AssignmentRepository stores seat assignments and the derived projections.
type AssignmentRepository interface {
	// ReplaceAssignment removes any active assignment held by the guest and
	// inserts the new one within a single transaction. Capacity is re-checked
	// inside the transaction; the (table_id, seat_number) unique index decides
	// races and surfaces the loser as ErrSeatTaken.
	ReplaceAssignment(ctx context.Context, assignment SeatAssignment, capacity int) error
	GetAssignmentForGuest(ctx context.Context, guestID string) (SeatAssignment, error)
	ListAssignmentsForTable(ctx context.Context, tableID string) ([]SeatAssignment, error)
	// DeleteAssignmentForGuest is idempotent: deleting a guest with no active
	// assignment is a no-op, not an error.
	DeleteAssignmentForGuest(ctx context.Context, guestID string) error
	CountAssignmentsForTable(ctx context.Context, tableID string) (int, error)
	ListTableOccupancies(ctx context.Context) ([]TableOccupancy, error)
	ListGuestSeats(ctx context.Context) ([]GuestSeat, error)
}

// AccessCodeRepository reads the shared secrets gating public registration.
type AccessCodeRepository interface {
	GetAccessCode(ctx context.Context, code string) (AccessCode, error)
	CreateAccessCode(ctx context.Context, code AccessCode) error
	ListAccessCodes(ctx context.Context) ([]AccessCode, error)
}

// SessionRepository stores operator session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
