package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/wedding-seating/internal/persistence"
)

// CheckInService tracks guest presence. The guest record is the canonical
// owner of the check-in flag and timestamp; seat assignments only ever show
// a derived copy through the status views.
type CheckInService struct {
	guests      persistence.GuestRepository
	tables      persistence.TableRepository
	assignments persistence.AssignmentRepository
	now         func() time.Time
	logger      *slog.Logger
}

// NewCheckInService constructs a check-in service with the provided
// dependencies.
func NewCheckInService(guests persistence.GuestRepository, tables persistence.TableRepository, assignments persistence.AssignmentRepository, now func() time.Time) *CheckInService {
	return NewCheckInServiceWithLogger(guests, tables, assignments, now, nil)
}

// NewCheckInServiceWithLogger constructs a check-in service with a specified
// logger.
func NewCheckInServiceWithLogger(guests persistence.GuestRepository, tables persistence.TableRepository, assignments persistence.AssignmentRepository, now func() time.Time, logger *slog.Logger) *CheckInService {
	if now == nil {
		now = time.Now
	}
	return &CheckInService{
		guests:      guests,
		tables:      tables,
		assignments: assignments,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *CheckInService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CheckInService", operation, attrs...)
}

// CheckIn marks a guest present. Re-scanning an already present guest is
// reported, not failed, and the original timestamp is preserved so the
// first physical arrival stays on record.
func (s *CheckInService) CheckIn(ctx context.Context, principal Principal, guestID string) (result CheckInResult, err error) {
	if s == nil {
		err = fmt.Errorf("CheckInService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CheckIn",
		"principal_id", principal.SessionID,
		"guest_id", guestID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to check in guest", "error", err, "error_kind", ErrorKind(err))
			return
		}
		if result.AlreadyCheckedIn {
			logger.InfoContext(ctx, "guest already checked in")
			return
		}
		logger.InfoContext(ctx, "guest checked in")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	stored, err := s.guests.GetGuest(ctx, guestID)
	if err != nil {
		err = mapCheckInRepoError(err)
		return
	}
	guest := toApplicationGuest(stored)

	if guest.CheckedIn {
		result = CheckInResult{Guest: guest, AlreadyCheckedIn: true}
		return
	}

	at := s.now()
	if err = s.guests.SetPresence(ctx, guestID, true, &at); err != nil {
		err = mapCheckInRepoError(err)
		return
	}

	guest.CheckedIn = true
	guest.CheckedInAt = &at
	result = CheckInResult{Guest: guest}
	return
}

// CheckOut clears a guest's presence flag and timestamp. Checking out a
// guest who is not present is a no-op, not an error.
func (s *CheckInService) CheckOut(ctx context.Context, principal Principal, guestID string) (Guest, error) {
	if s == nil {
		return Guest{}, fmt.Errorf("CheckInService is nil")
	}
	if !principal.IsAdmin {
		return Guest{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "CheckOut",
		"principal_id", principal.SessionID,
		"guest_id", guestID,
	)

	stored, err := s.guests.GetGuest(ctx, guestID)
	if err != nil {
		err = mapCheckInRepoError(err)
		logger.ErrorContext(ctx, "failed to check out guest", "error", err, "error_kind", ErrorKind(err))
		return Guest{}, err
	}
	guest := toApplicationGuest(stored)

	if guest.CheckedIn {
		if err := s.guests.SetPresence(ctx, guestID, false, nil); err != nil {
			err = mapCheckInRepoError(err)
			logger.ErrorContext(ctx, "failed to check out guest", "error", err, "error_kind", ErrorKind(err))
			return Guest{}, err
		}
		guest.CheckedIn = false
		guest.CheckedInAt = nil
	}

	logger.InfoContext(ctx, "guest checked out")
	return guest, nil
}

// Scan resolves a badge payload to a guest and performs the idempotent
// check-in, returning the seat summary scanner screens display. Resolution
// tries the QR token by exact match first, then the short guest code
// case-insensitively as the manual-entry fallback.
func (s *CheckInService) Scan(ctx context.Context, principal Principal, token string) (result ScanResult, err error) {
	if s == nil {
		err = fmt.Errorf("CheckInService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Scan", "principal_id", principal.SessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to process scan", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("guest_id", result.Guest.ID, "already_checked_in", result.AlreadyCheckedIn).InfoContext(ctx, "scan processed")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	guest, err := s.resolve(ctx, token)
	if err != nil {
		return
	}

	checkIn, err := s.CheckIn(ctx, principal, guest.ID)
	if err != nil {
		return
	}

	result = ScanResult{
		Guest:            checkIn.Guest,
		AlreadyCheckedIn: checkIn.AlreadyCheckedIn,
	}

	assignment, err := s.assignments.GetAssignmentForGuest(ctx, guest.ID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			// Guests may check in before being seated.
			err = nil
			return
		}
		err = mapCheckInRepoError(err)
		return
	}

	seat := assignment.SeatNumber
	result.SeatNumber = &seat

	table, tableErr := s.tables.GetTable(ctx, assignment.TableID)
	if tableErr == nil {
		number := table.Number
		result.TableNumber = &number
	}
	return
}

func (s *CheckInService) resolve(ctx context.Context, token string) (Guest, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Guest{}, ErrInvalidToken
	}

	stored, err := s.guests.GetGuestByQRToken(ctx, token)
	if err == nil {
		return toApplicationGuest(stored), nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return Guest{}, err
	}

	stored, err = s.guests.GetGuestByGuestCode(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Guest{}, ErrInvalidToken
		}
		return Guest{}, err
	}
	return toApplicationGuest(stored), nil
}

func mapCheckInRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
