package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/wedding-seating/internal/application"
)

type guestService interface {
	CreateGuest(ctx context.Context, params application.CreateGuestParams) (application.Guest, error)
	UpdateGuest(ctx context.Context, params application.UpdateGuestParams) (application.Guest, error)
	GetGuest(ctx context.Context, principal application.Principal, guestID string) (application.Guest, error)
	ListGuests(ctx context.Context, params application.ListGuestsParams) ([]application.Guest, error)
	DeleteGuest(ctx context.Context, principal application.Principal, guestID string) error
}

type GuestHandler struct {
	service   guestService
	responder responder
	logger    *slog.Logger
}

func NewGuestHandler(service guestService, logger *slog.Logger) *GuestHandler {
	base := defaultLogger(logger)
	return &GuestHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *GuestHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "GuestHandler", operation, attrs...)
}

func (h *GuestHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req guestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.SessionID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode guest request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.SessionID)

	guest, err := h.service.CreateGuest(r.Context(), application.CreateGuestParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "guest creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("guest_id", guest.ID).InfoContext(r.Context(), "guest created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, guestResponse{Guest: toGuestDTO(guest)})
}

func (h *GuestHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	guestID, ok := GuestIDFromContext(r.Context())
	if !ok || strings.TrimSpace(guestID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing guest id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGuestID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req guestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.SessionID, "guest_id", guestID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode guest update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.SessionID, "guest_id", guestID)

	guest, err := h.service.UpdateGuest(r.Context(), application.UpdateGuestParams{
		Principal: principal,
		GuestID:   guestID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "guest update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "guest updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, guestResponse{Guest: toGuestDTO(guest)})
}

func (h *GuestHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	guestID, ok := GuestIDFromContext(r.Context())
	if !ok || strings.TrimSpace(guestID) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing guest id for fetch")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGuestID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.SessionID, "guest_id", guestID)

	guest, err := h.service.GetGuest(r.Context(), principal, guestID)
	if err != nil {
		logger.ErrorContext(r.Context(), "guest fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, guestResponse{Guest: toGuestDTO(guest)})
}

func (h *GuestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	guestID, ok := GuestIDFromContext(r.Context())
	if !ok || strings.TrimSpace(guestID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing guest id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGuestID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.SessionID, "guest_id", guestID)

	if err := h.service.DeleteGuest(r.Context(), principal, guestID); err != nil {
		logger.ErrorContext(r.Context(), "guest delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "guest deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *GuestHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.log(r.Context(), "List", "error_kind", "unauthorized").ErrorContext(r.Context(), "missing authenticated principal")
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	query := r.URL.Query()
	logger := h.log(r.Context(), "List", "principal_id", principal.SessionID)

	guests, err := h.service.ListGuests(r.Context(), application.ListGuestsParams{
		Principal:  principal,
		Search:     strings.TrimSpace(query.Get("search")),
		RSVPStatus: application.RSVPStatus(strings.TrimSpace(query.Get("rsvp_status"))),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "guest list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(guests)).InfoContext(r.Context(), "guests listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listGuestsResponse{Guests: toGuestDTOs(guests)})
}

type guestRequest struct {
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	InvitationCode string  `json:"invitation_code"`
	RSVPStatus     string  `json:"rsvp_status"`
	PartySize      *int    `json:"party_size"`
	Dietary        *string `json:"dietary"`
	Notes          *string `json:"notes"`
}

func (r guestRequest) toInput() application.GuestInput {
	return application.GuestInput{
		FirstName:      strings.TrimSpace(r.FirstName),
		LastName:       strings.TrimSpace(r.LastName),
		Email:          r.Email,
		Phone:          r.Phone,
		InvitationCode: strings.TrimSpace(r.InvitationCode),
		RSVPStatus:     application.RSVPStatus(strings.TrimSpace(r.RSVPStatus)),
		PartySize:      r.PartySize,
		Dietary:        r.Dietary,
		Notes:          r.Notes,
	}
}

type guestResponse struct {
	Guest guestDTO `json:"guest"`
}

type listGuestsResponse struct {
	Guests []guestDTO `json:"guests"`
}

type guestDTO struct {
	ID             string  `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	InvitationCode string  `json:"invitation_code"`
	GuestCode      string  `json:"guest_code"`
	QRToken        string  `json:"qr_token"`
	RSVPStatus     string  `json:"rsvp_status"`
	PartySize      int     `json:"party_size"`
	Dietary        *string `json:"dietary,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	CheckedIn      bool    `json:"checked_in"`
	CheckedInAt    *string `json:"checked_in_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func toGuestDTO(guest application.Guest) guestDTO {
	dto := guestDTO{
		ID:             guest.ID,
		FirstName:      guest.FirstName,
		LastName:       guest.LastName,
		Email:          guest.Email,
		Phone:          guest.Phone,
		InvitationCode: guest.InvitationCode,
		GuestCode:      guest.GuestCode,
		QRToken:        guest.QRToken,
		RSVPStatus:     string(guest.RSVPStatus),
		PartySize:      guest.PartySize,
		Dietary:        guest.Dietary,
		Notes:          guest.Notes,
		CheckedIn:      guest.CheckedIn,
		CreatedAt:      guest.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:      guest.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if guest.CheckedInAt != nil {
		at := guest.CheckedInAt.UTC().Format(time.RFC3339Nano)
		dto.CheckedInAt = &at
	}
	return dto
}

func toGuestDTOs(guests []application.Guest) []guestDTO {
	if len(guests) == 0 {
		return nil
	}
	out := make([]guestDTO, 0, len(guests))
	for _, guest := range guests {
		out = append(out, toGuestDTO(guest))
	}
	return out
}
