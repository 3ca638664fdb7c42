package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/wedding-seating/internal/persistence"
)

// SeatingService owns seat allocation: at most one guest per (table, seat)
// and at most one active seat per guest. The application-level free-seat
// scan is an optimization only; the storage unique index decides races and
// the loser surfaces as ErrSeatTaken, never as a silent retry.
type SeatingService struct {
	guests      persistence.GuestRepository
	tables      persistence.TableRepository
	assignments persistence.AssignmentRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewSeatingService constructs a seating service with the provided
// dependencies.
func NewSeatingService(guests persistence.GuestRepository, tables persistence.TableRepository, assignments persistence.AssignmentRepository, idGenerator func() string, now func() time.Time) *SeatingService {
	return NewSeatingServiceWithLogger(guests, tables, assignments, idGenerator, now, nil)
}

// NewSeatingServiceWithLogger constructs a seating service with a specified
// logger.
func NewSeatingServiceWithLogger(guests persistence.GuestRepository, tables persistence.TableRepository, assignments persistence.AssignmentRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SeatingService {
	if idGenerator == nil {
		idGenerator = NewIDGenerator()
	}
	if now == nil {
		now = time.Now
	}
	return &SeatingService{
		guests:      guests,
		tables:      tables,
		assignments: assignments,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *SeatingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SeatingService", operation, attrs...)
}

// FindNextFreeSeat scans seat numbers 1..capacity in ascending order and
// returns the lowest free one. The first-fit ascending policy is
// deliberate: operators rely on predictable seat numbering after moves.
func (s *SeatingService) FindNextFreeSeat(ctx context.Context, principal Principal, tableID string) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("SeatingService is nil")
	}
	if !principal.IsAdmin {
		return 0, ErrUnauthorized
	}

	table, err := s.tables.GetTable(ctx, tableID)
	if err != nil {
		return 0, mapSeatingRepoError(err)
	}

	return s.nextFreeSeat(ctx, table, "")
}

// nextFreeSeat treats excludeGuestID's current seat as free: the replace
// deletes that assignment before inserting, so a guest reassigned to their
// own table reclaims the lowest seat instead of shifting upward.
func (s *SeatingService) nextFreeSeat(ctx context.Context, table persistence.Table, excludeGuestID string) (int, error) {
	assignments, err := s.assignments.ListAssignmentsForTable(ctx, table.ID)
	if err != nil {
		return 0, mapSeatingRepoError(err)
	}

	occupied := make(map[int]bool, len(assignments))
	for _, assignment := range assignments {
		if excludeGuestID != "" && assignment.GuestID == excludeGuestID {
			continue
		}
		occupied[assignment.SeatNumber] = true
	}

	for seat := 1; seat <= table.Capacity; seat++ {
		if !occupied[seat] {
			return seat, nil
		}
	}

	return 0, ErrTableFull
}

// AssignSeat seats a guest at a table. An existing assignment is replaced:
// a move is delete-then-insert within one storage transaction, never an
// update in place. Capacity is re-checked at insert time, closing the gap
// between the free-seat scan and the write.
func (s *SeatingService) AssignSeat(ctx context.Context, params AssignSeatParams) (assignment SeatAssignment, err error) {
	if s == nil {
		err = fmt.Errorf("SeatingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "AssignSeat",
		"principal_id", params.Principal.SessionID,
		"guest_id", params.GuestID,
		"table_id", params.TableID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to assign seat", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("seat_number", assignment.SeatNumber).InfoContext(ctx, "seat assigned")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if _, err = s.guests.GetGuest(ctx, params.GuestID); err != nil {
		err = mapSeatingRepoError(err)
		return
	}

	table, err := s.tables.GetTable(ctx, params.TableID)
	if err != nil {
		err = mapSeatingRepoError(err)
		return
	}

	seatNumber := 0
	if params.SeatNumber != nil {
		seatNumber = *params.SeatNumber
		if seatNumber < 1 || seatNumber > table.Capacity {
			vErr := &ValidationError{}
			vErr.add("seat_number", "seat number is out of range")
			err = vErr
			return
		}
	} else {
		seatNumber, err = s.nextFreeSeat(ctx, table, params.GuestID)
		if err != nil {
			return
		}
	}

	assignment = SeatAssignment{
		ID:         s.idGenerator(),
		GuestID:    params.GuestID,
		TableID:    params.TableID,
		SeatNumber: seatNumber,
		CreatedAt:  s.now(),
	}

	err = s.assignments.ReplaceAssignment(ctx, persistence.SeatAssignment{
		ID:         assignment.ID,
		GuestID:    assignment.GuestID,
		TableID:    assignment.TableID,
		SeatNumber: assignment.SeatNumber,
		CreatedAt:  assignment.CreatedAt,
	}, table.Capacity)
	if err != nil {
		err = mapSeatingRepoError(err)
		assignment = SeatAssignment{}
		return
	}

	return
}

// MoveGuest reseats a guest at the target table's next free seat. Moving a
// guest who already sits at the target table is a no-op reported as such,
// distinct from an actual move.
func (s *SeatingService) MoveGuest(ctx context.Context, params MoveGuestParams) (result MoveResult, err error) {
	if s == nil {
		err = fmt.Errorf("SeatingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "MoveGuest",
		"principal_id", params.Principal.SessionID,
		"guest_id", params.GuestID,
		"table_id", params.TableID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to move guest", "error", err, "error_kind", ErrorKind(err))
			return
		}
		if result.AlreadyAtTable {
			logger.InfoContext(ctx, "guest already at table")
			return
		}
		logger.With("seat_number", result.Assignment.SeatNumber).InfoContext(ctx, "guest moved")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	current, err := s.assignments.GetAssignmentForGuest(ctx, params.GuestID)
	if err == nil && current.TableID == params.TableID {
		result = MoveResult{Assignment: toApplicationAssignment(current), AlreadyAtTable: true}
		return
	}
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		err = mapSeatingRepoError(err)
		return
	}

	assignment, err := s.AssignSeat(ctx, AssignSeatParams{
		Principal: params.Principal,
		GuestID:   params.GuestID,
		TableID:   params.TableID,
	})
	if err != nil {
		return
	}

	result = MoveResult{Assignment: assignment}
	return
}

// RemoveFromTable deletes the guest's active assignment if any. Removing an
// unseated guest is a no-op, not an error.
func (s *SeatingService) RemoveFromTable(ctx context.Context, principal Principal, guestID string) error {
	if s == nil {
		return fmt.Errorf("SeatingService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "RemoveFromTable",
		"principal_id", principal.SessionID,
		"guest_id", guestID,
	)

	if err := s.assignments.DeleteAssignmentForGuest(ctx, guestID); err != nil {
		err = mapSeatingRepoError(err)
		logger.ErrorContext(ctx, "failed to remove guest from table", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "guest removed from table")
	return nil
}

// GetAssignment returns the guest's active assignment, if any.
func (s *SeatingService) GetAssignment(ctx context.Context, principal Principal, guestID string) (SeatAssignment, error) {
	if s == nil {
		return SeatAssignment{}, fmt.Errorf("SeatingService is nil")
	}
	if !principal.IsAdmin {
		return SeatAssignment{}, ErrUnauthorized
	}

	stored, err := s.assignments.GetAssignmentForGuest(ctx, guestID)
	if err != nil {
		return SeatAssignment{}, mapSeatingRepoError(err)
	}
	return toApplicationAssignment(stored), nil
}

// TableStatuses returns the per-table occupancy view, recomputed on every
// call. Available seats are clamped at zero for tables left over-occupied
// by an earlier capacity edit.
func (s *SeatingService) TableStatuses(ctx context.Context, principal Principal) (statuses []TableStatus, err error) {
	if s == nil {
		err = fmt.Errorf("SeatingService is nil")
		return
	}
	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	logger := s.loggerWith(ctx, "TableStatuses", "principal_id", principal.SessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to compute table statuses", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(statuses)).InfoContext(ctx, "table statuses computed")
	}()

	occupancies, err := s.assignments.ListTableOccupancies(ctx)
	if err != nil {
		err = mapSeatingRepoError(err)
		return
	}

	statuses = make([]TableStatus, 0, len(occupancies))
	for _, occ := range occupancies {
		available := occ.Table.Capacity - occ.Occupied
		if available < 0 {
			available = 0
		}
		statuses = append(statuses, TableStatus{
			Table:     toApplicationTable(occ.Table),
			Occupied:  occ.Occupied,
			Available: available,
		})
	}
	return
}

// GuestStatuses returns the per-guest assignment summary, recomputed on
// every call. The check-in flag comes from the guest record, the canonical
// owner of presence state.
func (s *SeatingService) GuestStatuses(ctx context.Context, principal Principal) (statuses []GuestStatus, err error) {
	if s == nil {
		err = fmt.Errorf("SeatingService is nil")
		return
	}
	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	logger := s.loggerWith(ctx, "GuestStatuses", "principal_id", principal.SessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to compute guest statuses", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(statuses)).InfoContext(ctx, "guest statuses computed")
	}()

	seats, err := s.assignments.ListGuestSeats(ctx)
	if err != nil {
		err = mapSeatingRepoError(err)
		return
	}

	statuses = make([]GuestStatus, 0, len(seats))
	for _, seat := range seats {
		statuses = append(statuses, GuestStatus{
			Guest:       toApplicationGuest(seat.Guest),
			TableID:     cloneString(seat.TableID),
			TableNumber: cloneInt(seat.TableNumber),
			SeatNumber:  cloneInt(seat.SeatNumber),
		})
	}
	return
}

func mapSeatingRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrTableFull):
		return ErrTableFull
	case errors.Is(err, persistence.ErrSeatTaken):
		return ErrSeatTaken
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrSeatTaken
	}
	return err
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
