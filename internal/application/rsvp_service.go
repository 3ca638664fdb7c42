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

// RSVPService handles the unauthenticated invitation surface: event-wide
// access codes gate self-registration, and invitation codes let registered
// guests confirm or decline attendance.
type RSVPService struct {
	guests      persistence.GuestRepository
	accessCodes persistence.AccessCodeRepository
	registrar   *GuestService
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRSVPService constructs an RSVP service with the provided dependencies.
func NewRSVPService(guests persistence.GuestRepository, accessCodes persistence.AccessCodeRepository, registrar *GuestService, idGenerator func() string, now func() time.Time) *RSVPService {
	return NewRSVPServiceWithLogger(guests, accessCodes, registrar, idGenerator, now, nil)
}

// NewRSVPServiceWithLogger constructs an RSVP service with a specified logger.
func NewRSVPServiceWithLogger(guests persistence.GuestRepository, accessCodes persistence.AccessCodeRepository, registrar *GuestService, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RSVPService {
	if idGenerator == nil {
		idGenerator = NewIDGenerator()
	}
	if now == nil {
		now = time.Now
	}
	return &RSVPService{
		guests:      guests,
		accessCodes: accessCodes,
		registrar:   registrar,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RSVPService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RSVPService", operation, attrs...)
}

// ValidateAccessCode checks that the event access code exists and is active.
// The lookup is case-insensitive; unknown and deactivated codes are
// indistinguishable to the caller.
func (s *RSVPService) ValidateAccessCode(ctx context.Context, code string) error {
	if s == nil {
		return fmt.Errorf("RSVPService is nil")
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvalidAccessCode
	}

	stored, err := s.accessCodes.GetAccessCode(ctx, code)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrInvalidAccessCode
		}
		return err
	}
	if !stored.Active {
		return ErrInvalidAccessCode
	}
	return nil
}

// RegisterGuest creates a guest through the self-service flow. The access
// code gates the operation; registered guests start in the pending state
// until they confirm through their invitation code.
func (s *RSVPService) RegisterGuest(ctx context.Context, params RegisterGuestParams) (guest Guest, err error) {
	if s == nil {
		err = fmt.Errorf("RSVPService is nil")
		return
	}

	logger := s.loggerWith(ctx, "RegisterGuest")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to register guest", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("guest_id", guest.ID).InfoContext(ctx, "guest registered")
	}()

	if err = s.ValidateAccessCode(ctx, params.AccessCode); err != nil {
		return
	}

	input := params.Input
	input.RSVPStatus = ""

	guest, err = s.registrar.createGuest(ctx, input, RSVPPending)
	return
}

// ConfirmRSVP records a guest's attendance answer by invitation code.
// Confirming again overwrites the previous answer; the last response wins.
func (s *RSVPService) ConfirmRSVP(ctx context.Context, params ConfirmRSVPParams) (guest Guest, err error) {
	if s == nil {
		err = fmt.Errorf("RSVPService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ConfirmRSVP")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to confirm rsvp", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("guest_id", guest.ID, "rsvp_status", string(guest.RSVPStatus)).InfoContext(ctx, "rsvp confirmed")
	}()

	code := strings.TrimSpace(params.InvitationCode)
	if code == "" {
		err = ErrInvalidInvitationCode
		return
	}

	stored, err := s.guests.GetGuestByInvitationCode(ctx, code)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrInvalidInvitationCode
			return
		}
		return
	}
	updated := toApplicationGuest(stored)

	if params.PartySize != nil {
		if *params.PartySize < 0 {
			vErr := &ValidationError{}
			vErr.add("party_size", "party size must not be negative")
			err = vErr
			return
		}
		updated.PartySize = *params.PartySize
	}

	if params.Attending {
		updated.RSVPStatus = RSVPConfirmed
	} else {
		updated.RSVPStatus = RSVPDeclined
	}
	if params.Dietary != nil {
		updated.Dietary = normalizeOptionalString(params.Dietary)
	}
	if params.Notes != nil {
		updated.Notes = normalizeOptionalString(params.Notes)
	}
	updated.UpdatedAt = s.now()

	if err = s.guests.UpdateGuest(ctx, toPersistenceGuest(updated)); err != nil {
		err = mapGuestRepoError(err)
		return
	}

	guest = updated
	return
}

// LookupInvitation returns the guest bound to an invitation code so the
// public RSVP form can greet them by name before they answer.
func (s *RSVPService) LookupInvitation(ctx context.Context, code string) (Guest, error) {
	if s == nil {
		return Guest{}, fmt.Errorf("RSVPService is nil")
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return Guest{}, ErrInvalidInvitationCode
	}

	stored, err := s.guests.GetGuestByInvitationCode(ctx, code)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Guest{}, ErrInvalidInvitationCode
		}
		return Guest{}, err
	}
	return toApplicationGuest(stored), nil
}

// CreateAccessCode registers a new event access code for administrators.
func (s *RSVPService) CreateAccessCode(ctx context.Context, principal Principal, code string, label *string) (AccessCode, error) {
	if s == nil {
		return AccessCode{}, fmt.Errorf("RSVPService is nil")
	}
	if !principal.IsAdmin {
		return AccessCode{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "CreateAccessCode", "principal_id", principal.SessionID)

	code = strings.TrimSpace(code)
	if code == "" {
		vErr := &ValidationError{}
		vErr.add("code", "access code is required")
		logger.ErrorContext(ctx, "failed to create access code", "error", vErr, "error_kind", ErrorKind(vErr))
		return AccessCode{}, vErr
	}

	stored := persistence.AccessCode{
		ID:        s.idGenerator(),
		Code:      code,
		Label:     cloneString(label),
		Active:    true,
		CreatedAt: s.now(),
	}
	if err := s.accessCodes.CreateAccessCode(ctx, stored); err != nil {
		err = mapGuestRepoError(err)
		logger.ErrorContext(ctx, "failed to create access code", "error", err, "error_kind", ErrorKind(err))
		return AccessCode{}, err
	}

	logger.InfoContext(ctx, "access code created")
	return toApplicationAccessCode(stored), nil
}

// ListAccessCodes returns all registered access codes for administrators.
func (s *RSVPService) ListAccessCodes(ctx context.Context, principal Principal) ([]AccessCode, error) {
	if s == nil {
		return nil, fmt.Errorf("RSVPService is nil")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}

	stored, err := s.accessCodes.ListAccessCodes(ctx)
	if err != nil {
		return nil, err
	}

	codes := make([]AccessCode, 0, len(stored))
	for _, model := range stored {
		codes = append(codes, toApplicationAccessCode(model))
	}
	return codes, nil
}
