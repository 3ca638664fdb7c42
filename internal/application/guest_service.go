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

// GuestService orchestrates validation, authorization, and persistence for
// the guest registry. Guest codes and QR tokens are minted exactly once, at
// creation; updates never touch them.
type GuestService struct {
	guests         persistence.GuestRepository
	idGenerator    func() string
	codeGenerator  func() string
	tokenGenerator func() string
	codePrefix     string
	now            func() time.Time
	logger         *slog.Logger
}

// NewGuestService constructs a guest service with the provided dependencies.
func NewGuestService(guests persistence.GuestRepository, idGenerator func() string, codePrefix string, now func() time.Time) *GuestService {
	return NewGuestServiceWithLogger(guests, idGenerator, codePrefix, now, nil)
}

// NewGuestServiceWithLogger constructs a guest service with a specified logger.
func NewGuestServiceWithLogger(guests persistence.GuestRepository, idGenerator func() string, codePrefix string, now func() time.Time, logger *slog.Logger) *GuestService {
	if idGenerator == nil {
		idGenerator = NewIDGenerator()
	}
	if now == nil {
		now = time.Now
	}
	if codePrefix == "" {
		codePrefix = "WEDDING"
	}
	return &GuestService{
		guests:         guests,
		idGenerator:    idGenerator,
		codeGenerator:  GenerateGuestCode,
		tokenGenerator: NewQRTokenGenerator(codePrefix),
		codePrefix:     codePrefix,
		now:            now,
		logger:         defaultLogger(logger),
	}
}

func (s *GuestService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "GuestService", operation, attrs...)
}

// CreateGuest validates input and persists a new guest for administrators.
// The generated guest code and QR token are durable for the life of the
// guest record.
func (s *GuestService) CreateGuest(ctx context.Context, params CreateGuestParams) (guest Guest, err error) {
	if s == nil {
		err = fmt.Errorf("GuestService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateGuest", "principal_id", params.Principal.SessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create guest", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("guest_id", guest.ID).InfoContext(ctx, "guest created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	guest, err = s.createGuest(ctx, params.Input, RSVPConfirmed)
	return
}

// createGuest is shared between the admin flow (default status confirmed)
// and the access-code gated registration flow (default status pending).
func (s *GuestService) createGuest(ctx context.Context, input GuestInput, defaultStatus RSVPStatus) (Guest, error) {
	vErr := validateGuestInput(input)
	if vErr.HasErrors() {
		return Guest{}, vErr
	}

	status := input.RSVPStatus
	if status == "" {
		status = defaultStatus
	}

	partySize := 0
	if input.PartySize != nil {
		partySize = *input.PartySize
	}

	guestCode := s.codeGenerator()
	invitationCode := strings.TrimSpace(input.InvitationCode)
	if invitationCode == "" {
		invitationCode = s.codePrefix + "-" + guestCode
	}

	guest := Guest{
		ID:             s.idGenerator(),
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Email:          normalizeOptionalString(input.Email),
		Phone:          normalizeOptionalString(input.Phone),
		InvitationCode: invitationCode,
		GuestCode:      guestCode,
		QRToken:        s.tokenGenerator(),
		RSVPStatus:     status,
		PartySize:      partySize,
		Dietary:        normalizeOptionalString(input.Dietary),
		Notes:          normalizeOptionalString(input.Notes),
		CreatedAt:      s.now(),
	}
	guest.UpdatedAt = guest.CreatedAt

	if err := s.guests.CreateGuest(ctx, toPersistenceGuest(guest)); err != nil {
		return Guest{}, mapGuestRepoError(err)
	}

	return guest, nil
}

// UpdateGuest applies a partial update to an existing guest. Blank fields
// keep their current values; guest_code and qr_token are never changed.
func (s *GuestService) UpdateGuest(ctx context.Context, params UpdateGuestParams) (guest Guest, err error) {
	if s == nil {
		err = fmt.Errorf("GuestService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	logger := s.loggerWith(ctx, "UpdateGuest",
		"principal_id", params.Principal.SessionID,
		"guest_id", params.GuestID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update guest", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "guest updated")
	}()

	stored, err := s.guests.GetGuest(ctx, params.GuestID)
	if err != nil {
		err = mapGuestRepoError(err)
		return
	}
	updated := toApplicationGuest(stored)

	if name := strings.TrimSpace(params.Input.FirstName); name != "" {
		updated.FirstName = name
	}
	if name := strings.TrimSpace(params.Input.LastName); name != "" {
		updated.LastName = name
	}
	if params.Input.Email != nil {
		updated.Email = normalizeOptionalString(params.Input.Email)
	}
	if params.Input.Phone != nil {
		updated.Phone = normalizeOptionalString(params.Input.Phone)
	}
	if code := strings.TrimSpace(params.Input.InvitationCode); code != "" {
		updated.InvitationCode = code
	}
	if params.Input.RSVPStatus != "" {
		if !params.Input.RSVPStatus.Valid() {
			vErr := &ValidationError{}
			vErr.add("rsvp_status", "rsvp status is invalid")
			err = vErr
			return
		}
		updated.RSVPStatus = params.Input.RSVPStatus
	}
	if params.Input.PartySize != nil {
		if *params.Input.PartySize < 0 {
			vErr := &ValidationError{}
			vErr.add("party_size", "party size must not be negative")
			err = vErr
			return
		}
		updated.PartySize = *params.Input.PartySize
	}
	if params.Input.Dietary != nil {
		updated.Dietary = normalizeOptionalString(params.Input.Dietary)
	}
	if params.Input.Notes != nil {
		updated.Notes = normalizeOptionalString(params.Input.Notes)
	}
	updated.UpdatedAt = s.now()

	if err = s.guests.UpdateGuest(ctx, toPersistenceGuest(updated)); err != nil {
		err = mapGuestRepoError(err)
		return
	}

	guest = updated
	return
}

// DeleteGuest removes a guest and, atomically, any active seat assignment.
func (s *GuestService) DeleteGuest(ctx context.Context, principal Principal, guestID string) error {
	if s == nil {
		return fmt.Errorf("GuestService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteGuest",
		"principal_id", principal.SessionID,
		"guest_id", guestID,
	)

	if err := s.guests.DeleteGuest(ctx, guestID); err != nil {
		err = mapGuestRepoError(err)
		logger.ErrorContext(ctx, "failed to delete guest", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "guest deleted")
	return nil
}

// GetGuest returns a guest by id.
func (s *GuestService) GetGuest(ctx context.Context, principal Principal, guestID string) (Guest, error) {
	if s == nil {
		return Guest{}, fmt.Errorf("GuestService is nil")
	}
	if !principal.IsAdmin {
		return Guest{}, ErrUnauthorized
	}

	stored, err := s.guests.GetGuest(ctx, guestID)
	if err != nil {
		return Guest{}, mapGuestRepoError(err)
	}
	return toApplicationGuest(stored), nil
}

// ListGuests returns guests matching the search filter.
func (s *GuestService) ListGuests(ctx context.Context, params ListGuestsParams) (guests []Guest, err error) {
	if s == nil {
		err = fmt.Errorf("GuestService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	logger := s.loggerWith(ctx, "ListGuests", "principal_id", params.Principal.SessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list guests", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(guests)).InfoContext(ctx, "guests listed")
	}()

	stored, err := s.guests.ListGuests(ctx, persistence.GuestFilter{
		Search:     strings.TrimSpace(params.Search),
		RSVPStatus: string(params.RSVPStatus),
	})
	if err != nil {
		err = mapGuestRepoError(err)
		return
	}

	guests = make([]Guest, 0, len(stored))
	for _, model := range stored {
		guests = append(guests, toApplicationGuest(model))
	}
	return
}

// ResolveQRToken resolves a scanned badge payload to its guest by exact
// string match. Unknown or blank tokens yield ErrInvalidToken.
func (s *GuestService) ResolveQRToken(ctx context.Context, token string) (Guest, error) {
	if s == nil {
		return Guest{}, fmt.Errorf("GuestService is nil")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return Guest{}, ErrInvalidToken
	}

	stored, err := s.guests.GetGuestByQRToken(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Guest{}, ErrInvalidToken
		}
		return Guest{}, err
	}
	return toApplicationGuest(stored), nil
}

// ResolveGuestCode resolves the short manual-entry code, case-insensitively.
func (s *GuestService) ResolveGuestCode(ctx context.Context, code string) (Guest, error) {
	if s == nil {
		return Guest{}, fmt.Errorf("GuestService is nil")
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return Guest{}, ErrInvalidToken
	}

	stored, err := s.guests.GetGuestByGuestCode(ctx, code)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Guest{}, ErrInvalidToken
		}
		return Guest{}, err
	}
	return toApplicationGuest(stored), nil
}

func validateGuestInput(input GuestInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.FirstName) == "" {
		vErr.add("first_name", "first name is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		vErr.add("last_name", "last name is required")
	}
	if input.PartySize != nil && *input.PartySize < 0 {
		vErr.add("party_size", "party size must not be negative")
	}
	if input.RSVPStatus != "" && !input.RSVPStatus.Valid() {
		vErr.add("rsvp_status", "rsvp status is invalid")
	}

	return vErr
}

func mapGuestRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrDuplicateCode
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("party_size", "party size must not be negative")
		return vErr
	}
	return err
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
