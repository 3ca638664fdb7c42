package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/wedding-seating/internal/persistence"
)

// AssignmentRepository implements persistence.AssignmentRepository using
// SQLite. The (table_id, seat_number) unique index is the source of truth
// for seat uniqueness; application-level scans are only an optimization.
type AssignmentRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewAssignmentRepository creates a new SQLite assignment repository.
func NewAssignmentRepository(pool *ConnectionPool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool, mapper: NewErrorMapper()}
}

const assignmentColumns = `id, guest_id, table_id, seat_number, created_at`

// ReplaceAssignment removes any active assignment held by the guest and
// inserts the new one in a single transaction. A move is delete-then-insert,
// never update-in-place. Capacity is re-checked inside the transaction so a
// concurrent insert cannot push a table past its capacity; the loser of a
// race for a specific seat gets persistence.ErrSeatTaken from the unique
// index.
func (r *AssignmentRepository) ReplaceAssignment(ctx context.Context, assignment persistence.SeatAssignment, capacity int) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM seating_assignments WHERE guest_id = ?`, assignment.GuestID); err != nil {
			return r.mapper.MapError(err)
		}

		var occupied int
		err := tx.QueryRow(
			`SELECT COUNT(*) FROM seating_assignments WHERE table_id = ?`,
			assignment.TableID,
		).Scan(&occupied)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if occupied >= capacity {
			return persistence.ErrTableFull
		}

		_, err = tx.Exec(`
			INSERT INTO seating_assignments (`+assignmentColumns+`)
			VALUES (?, ?, ?, ?, ?)
		`,
			assignment.ID,
			assignment.GuestID,
			assignment.TableID,
			assignment.SeatNumber,
			formatTime(assignment.CreatedAt),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		return nil
	})
}

// GetAssignmentForGuest returns the guest's active assignment, if any.
func (r *AssignmentRepository) GetAssignmentForGuest(ctx context.Context, guestID string) (persistence.SeatAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM seating_assignments WHERE guest_id = ?`

	assignment, err := scanAssignment(r.pool.db.QueryRowContext(ctx, query, guestID))
	if err != nil {
		return persistence.SeatAssignment{}, r.mapper.MapError(err)
	}

	return assignment, nil
}

// ListAssignmentsForTable returns the table's active assignments ordered by
// seat number ascending, the order the first-fit scan depends on.
func (r *AssignmentRepository) ListAssignmentsForTable(ctx context.Context, tableID string) ([]persistence.SeatAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM seating_assignments
		WHERE table_id = ?
		ORDER BY seat_number ASC
	`

	rows, err := r.pool.db.QueryContext(ctx, query, tableID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var assignments []persistence.SeatAssignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return assignments, nil
}

// DeleteAssignmentForGuest removes the guest's active assignment. Removing a
// guest who holds no seat is a no-op, not an error.
func (r *AssignmentRepository) DeleteAssignmentForGuest(ctx context.Context, guestID string) error {
	if _, err := r.pool.db.ExecContext(ctx, `DELETE FROM seating_assignments WHERE guest_id = ?`, guestID); err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// CountAssignmentsForTable returns the number of occupied seats at a table.
func (r *AssignmentRepository) CountAssignmentsForTable(ctx context.Context, tableID string) (int, error) {
	var count int
	err := r.pool.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seating_assignments WHERE table_id = ?`,
		tableID,
	).Scan(&count)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

// ListTableOccupancies returns every table with its occupied seat count,
// ordered by table number. Recomputed on every call.
func (r *AssignmentRepository) ListTableOccupancies(ctx context.Context) ([]persistence.TableOccupancy, error) {
	query := `
		SELECT t.id, t.table_number, t.table_name, t.capacity, t.vip, t.color,
			t.created_at, t.updated_at, COUNT(sa.id)
		FROM tables t
		LEFT JOIN seating_assignments sa ON sa.table_id = t.id
		GROUP BY t.id
		ORDER BY t.table_number ASC
	`

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var occupancies []persistence.TableOccupancy
	for rows.Next() {
		var occ persistence.TableOccupancy
		var name, color sql.NullString
		var vip int
		var createdAt, updatedAt string

		err := rows.Scan(
			&occ.Table.ID,
			&occ.Table.Number,
			&name,
			&occ.Table.Capacity,
			&vip,
			&color,
			&createdAt,
			&updatedAt,
			&occ.Occupied,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		occ.Table.Name = fromNullString(name)
		occ.Table.Color = fromNullString(color)
		occ.Table.VIP = vip != 0
		if occ.Table.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if occ.Table.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}

		occupancies = append(occupancies, occ)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return occupancies, nil
}

// ListGuestSeats returns every guest joined with its seat, if any, ordered
// by name. The check-in flag rides on the guest row, the canonical owner of
// presence state.
func (r *AssignmentRepository) ListGuestSeats(ctx context.Context) ([]persistence.GuestSeat, error) {
	query := `
		SELECT g.id, g.first_name, g.last_name, g.email, g.phone,
			g.invitation_code, g.guest_code, g.qr_token, g.rsvp_status,
			g.party_size, g.dietary, g.notes, g.checked_in, g.checked_in_at,
			g.created_at, g.updated_at,
			sa.table_id, t.table_number, sa.seat_number
		FROM guests g
		LEFT JOIN seating_assignments sa ON sa.guest_id = g.id
		LEFT JOIN tables t ON t.id = sa.table_id
		ORDER BY g.last_name COLLATE NOCASE ASC, g.first_name COLLATE NOCASE ASC, g.id ASC
	`

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var seats []persistence.GuestSeat
	for rows.Next() {
		var seat persistence.GuestSeat
		var email, phone, dietary, notes, checkedInAt sql.NullString
		var checkedIn int
		var createdAt, updatedAt string
		var tableID sql.NullString
		var tableNumber, seatNumber sql.NullInt64

		err := rows.Scan(
			&seat.Guest.ID,
			&seat.Guest.FirstName,
			&seat.Guest.LastName,
			&email,
			&phone,
			&seat.Guest.InvitationCode,
			&seat.Guest.GuestCode,
			&seat.Guest.QRToken,
			&seat.Guest.RSVPStatus,
			&seat.Guest.PartySize,
			&dietary,
			&notes,
			&checkedIn,
			&checkedInAt,
			&createdAt,
			&updatedAt,
			&tableID,
			&tableNumber,
			&seatNumber,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		seat.Guest.Email = fromNullString(email)
		seat.Guest.Phone = fromNullString(phone)
		seat.Guest.Dietary = fromNullString(dietary)
		seat.Guest.Notes = fromNullString(notes)
		seat.Guest.CheckedIn = checkedIn != 0
		if seat.Guest.CheckedInAt, err = parseOptionalTime(checkedInAt); err != nil {
			return nil, err
		}
		if seat.Guest.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if seat.Guest.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}

		seat.TableID = fromNullString(tableID)
		if tableNumber.Valid {
			n := int(tableNumber.Int64)
			seat.TableNumber = &n
		}
		if seatNumber.Valid {
			n := int(seatNumber.Int64)
			seat.SeatNumber = &n
		}

		seats = append(seats, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return seats, nil
}

func scanAssignment(row rowScanner) (persistence.SeatAssignment, error) {
	var assignment persistence.SeatAssignment
	var createdAt string

	err := row.Scan(
		&assignment.ID,
		&assignment.GuestID,
		&assignment.TableID,
		&assignment.SeatNumber,
		&createdAt,
	)
	if err != nil {
		return persistence.SeatAssignment{}, err
	}

	if assignment.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.SeatAssignment{}, err
	}

	return assignment, nil
}
