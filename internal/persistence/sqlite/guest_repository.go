package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/wedding-seating/internal/persistence"
)

// GuestRepository implements persistence.GuestRepository using SQLite.
type GuestRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewGuestRepository creates a new SQLite guest repository.
func NewGuestRepository(pool *ConnectionPool) *GuestRepository {
	return &GuestRepository{pool: pool, mapper: NewErrorMapper()}
}

const guestColumns = `id, first_name, last_name, email, phone, invitation_code,
	guest_code, qr_token, rsvp_status, party_size, dietary, notes,
	checked_in, checked_in_at, created_at, updated_at`

// CreateGuest inserts a new guest. Collisions on invitation_code, guest_code
// or qr_token surface as persistence.ErrDuplicate via the unique indexes.
func (r *GuestRepository) CreateGuest(ctx context.Context, guest persistence.Guest) error {
	if guest.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO guests (` + guestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.pool.db.ExecContext(ctx, query,
		guest.ID,
		guest.FirstName,
		guest.LastName,
		optionalString(guest.Email),
		optionalString(guest.Phone),
		guest.InvitationCode,
		guest.GuestCode,
		guest.QRToken,
		guest.RSVPStatus,
		guest.PartySize,
		optionalString(guest.Dietary),
		optionalString(guest.Notes),
		boolToInt(guest.CheckedIn),
		formatOptionalTime(guest.CheckedInAt),
		formatTime(guest.CreatedAt),
		formatTime(guest.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateGuest updates an existing guest. guest_code and qr_token are
// deliberately not part of the statement: they are minted once at creation.
func (r *GuestRepository) UpdateGuest(ctx context.Context, guest persistence.Guest) error {
	query := `
		UPDATE guests
		SET first_name = ?, last_name = ?, email = ?, phone = ?,
			invitation_code = ?, rsvp_status = ?, party_size = ?,
			dietary = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.pool.db.ExecContext(ctx, query,
		guest.FirstName,
		guest.LastName,
		optionalString(guest.Email),
		optionalString(guest.Phone),
		guest.InvitationCode,
		guest.RSVPStatus,
		guest.PartySize,
		optionalString(guest.Dietary),
		optionalString(guest.Notes),
		formatTime(guest.UpdatedAt),
		guest.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// GetGuest retrieves a guest by ID.
func (r *GuestRepository) GetGuest(ctx context.Context, id string) (persistence.Guest, error) {
	return r.getGuestBy(ctx, "id = ?", id)
}

// GetGuestByInvitationCode retrieves a guest by invitation code. The column
// collates NOCASE, so the lookup is case-insensitive.
func (r *GuestRepository) GetGuestByInvitationCode(ctx context.Context, code string) (persistence.Guest, error) {
	return r.getGuestBy(ctx, "invitation_code = ?", code)
}

// GetGuestByGuestCode retrieves a guest by its short generated code,
// case-insensitively.
func (r *GuestRepository) GetGuestByGuestCode(ctx context.Context, code string) (persistence.Guest, error) {
	return r.getGuestBy(ctx, "guest_code = ?", code)
}

// GetGuestByQRToken resolves a scanned token by exact match.
func (r *GuestRepository) GetGuestByQRToken(ctx context.Context, token string) (persistence.Guest, error) {
	return r.getGuestBy(ctx, "qr_token = ?", token)
}

func (r *GuestRepository) getGuestBy(ctx context.Context, where string, arg any) (persistence.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE ` + where

	row := r.pool.db.QueryRowContext(ctx, query, arg)
	guest, err := scanGuest(row)
	if err != nil {
		return persistence.Guest{}, r.mapper.MapError(err)
	}

	return guest, nil
}

// ListGuests returns guests matching the filter, ordered by last then first
// name then ID for a stable listing.
func (r *GuestRepository) ListGuests(ctx context.Context, filter persistence.GuestFilter) ([]persistence.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests`
	var conditions []string
	var args []any

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		conditions = append(conditions, `(
			first_name LIKE ? COLLATE NOCASE
			OR last_name LIKE ? COLLATE NOCASE
			OR email LIKE ? COLLATE NOCASE
			OR invitation_code LIKE ? COLLATE NOCASE
			OR guest_code LIKE ? COLLATE NOCASE
		)`)
		args = append(args, pattern, pattern, pattern, pattern, pattern)
	}
	if filter.RSVPStatus != "" {
		conditions = append(conditions, "rsvp_status = ?")
		args = append(args, filter.RSVPStatus)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY last_name COLLATE NOCASE ASC, first_name COLLATE NOCASE ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var guests []persistence.Guest
	for rows.Next() {
		guest, err := scanGuest(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		guests = append(guests, guest)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return guests, nil
}

// DeleteGuest removes a guest and its active seat assignment atomically.
func (r *GuestRepository) DeleteGuest(ctx context.Context, id string) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM seating_assignments WHERE guest_id = ?`, id); err != nil {
			return r.mapper.MapError(err)
		}

		result, err := tx.Exec(`DELETE FROM guests WHERE id = ?`, id)
		if err != nil {
			return r.mapper.MapError(err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return persistence.ErrNotFound
		}

		return nil
	})
}

// SetPresence updates the check-in flag and timestamp on the guest record.
func (r *GuestRepository) SetPresence(ctx context.Context, id string, checkedIn bool, at *time.Time) error {
	query := `
		UPDATE guests
		SET checked_in = ?, checked_in_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.pool.db.ExecContext(ctx, query,
		boolToInt(checkedIn),
		formatOptionalTime(at),
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuest(row rowScanner) (persistence.Guest, error) {
	var guest persistence.Guest
	var email, phone, dietary, notes, checkedInAt sql.NullString
	var checkedIn int
	var createdAt, updatedAt string

	err := row.Scan(
		&guest.ID,
		&guest.FirstName,
		&guest.LastName,
		&email,
		&phone,
		&guest.InvitationCode,
		&guest.GuestCode,
		&guest.QRToken,
		&guest.RSVPStatus,
		&guest.PartySize,
		&dietary,
		&notes,
		&checkedIn,
		&checkedInAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Guest{}, err
	}

	guest.Email = fromNullString(email)
	guest.Phone = fromNullString(phone)
	guest.Dietary = fromNullString(dietary)
	guest.Notes = fromNullString(notes)
	guest.CheckedIn = checkedIn != 0

	if guest.CheckedInAt, err = parseOptionalTime(checkedInAt); err != nil {
		return persistence.Guest{}, err
	}
	if guest.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Guest{}, err
	}
	if guest.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Guest{}, err
	}

	return guest, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
