package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/wedding-seating/internal/application"
	"github.com/example/wedding-seating/internal/metrics"
)

type rsvpService interface {
	RegisterGuest(ctx context.Context, params application.RegisterGuestParams) (application.Guest, error)
	ConfirmRSVP(ctx context.Context, params application.ConfirmRSVPParams) (application.Guest, error)
	LookupInvitation(ctx context.Context, code string) (application.Guest, error)
	CreateAccessCode(ctx context.Context, principal application.Principal, code string, label *string) (application.AccessCode, error)
	ListAccessCodes(ctx context.Context, principal application.Principal) ([]application.AccessCode, error)
}

type RSVPHandler struct {
	service   rsvpService
	responder responder
	logger    *slog.Logger
}

func NewRSVPHandler(service rsvpService, logger *slog.Logger) *RSVPHandler {
	base := defaultLogger(logger)
	return &RSVPHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RSVPHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RSVPHandler", operation, attrs...)
}

// Register handles the public, access-code gated self-registration flow.
// Responses only expose the public subset of the guest record.
func (h *RSVPHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Register", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode registration request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Register")

	guest, err := h.service.RegisterGuest(r.Context(), application.RegisterGuestParams{
		AccessCode: strings.TrimSpace(req.AccessCode),
		Input: application.GuestInput{
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Email:     req.Email,
			Phone:     req.Phone,
			PartySize: req.PartySize,
			Dietary:   req.Dietary,
			Notes:     req.Notes,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "guest registration failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("guest_id", guest.ID).InfoContext(r.Context(), "guest registered")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, registrationResponse{
		Invitation: toInvitationDTO(guest),
	})
}

// Lookup returns the public view of an invitation so the RSVP form can greet
// the guest before they answer.
func (h *RSVPHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	code, ok := RSVPCodeFromContext(r.Context())
	if !ok || strings.TrimSpace(code) == "" {
		h.responder.handleServiceError(r.Context(), w, application.ErrInvalidInvitationCode)
		return
	}

	logger := h.log(r.Context(), "Lookup")

	guest, err := h.service.LookupInvitation(r.Context(), code)
	if err != nil {
		logger.ErrorContext(r.Context(), "invitation lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, registrationResponse{Invitation: toInvitationDTO(guest)})
}

// Confirm records an attendance answer for the invitation code in the path.
func (h *RSVPHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	code, ok := RSVPCodeFromContext(r.Context())
	if !ok || strings.TrimSpace(code) == "" {
		h.responder.handleServiceError(r.Context(), w, application.ErrInvalidInvitationCode)
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Confirm", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode confirmation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Confirm")

	guest, err := h.service.ConfirmRSVP(r.Context(), application.ConfirmRSVPParams{
		InvitationCode: code,
		Attending:      req.Attending,
		PartySize:      req.PartySize,
		Dietary:        req.Dietary,
		Notes:          req.Notes,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "rsvp confirmation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	metrics.RSVPTotal.WithLabelValues(string(guest.RSVPStatus)).Inc()
	logger.With("guest_id", guest.ID, "rsvp_status", string(guest.RSVPStatus)).InfoContext(r.Context(), "rsvp recorded")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, registrationResponse{Invitation: toInvitationDTO(guest)})
}

func (h *RSVPHandler) CreateAccessCode(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req accessCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateAccessCode", "principal_id", principal.SessionID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode access code request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateAccessCode", "principal_id", principal.SessionID)

	code, err := h.service.CreateAccessCode(r.Context(), principal, req.Code, req.Label)
	if err != nil {
		logger.ErrorContext(r.Context(), "access code creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "access code created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, accessCodeResponse{AccessCode: toAccessCodeDTO(code)})
}

func (h *RSVPHandler) ListAccessCodes(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListAccessCodes", "principal_id", principal.SessionID)

	codes, err := h.service.ListAccessCodes(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "access code list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]accessCodeDTO, 0, len(codes))
	for _, code := range codes {
		out = append(out, toAccessCodeDTO(code))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAccessCodesResponse{AccessCodes: out})
}

type registerRequest struct {
	AccessCode string  `json:"access_code"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	PartySize  *int    `json:"party_size"`
	Dietary    *string `json:"dietary"`
	Notes      *string `json:"notes"`
}

type confirmRequest struct {
	Attending bool    `json:"attending"`
	PartySize *int    `json:"party_size"`
	Dietary   *string `json:"dietary"`
	Notes     *string `json:"notes"`
}

type registrationResponse struct {
	Invitation invitationDTO `json:"invitation"`
}

// invitationDTO is the public projection of a guest: no internal id, no QR
// token, no operator notes.
type invitationDTO struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	InvitationCode string `json:"invitation_code"`
	GuestCode      string `json:"guest_code"`
	RSVPStatus     string `json:"rsvp_status"`
	PartySize      int    `json:"party_size"`
}

func toInvitationDTO(guest application.Guest) invitationDTO {
	return invitationDTO{
		FirstName:      guest.FirstName,
		LastName:       guest.LastName,
		InvitationCode: guest.InvitationCode,
		GuestCode:      guest.GuestCode,
		RSVPStatus:     string(guest.RSVPStatus),
		PartySize:      guest.PartySize,
	}
}

type accessCodeRequest struct {
	Code  string  `json:"code"`
	Label *string `json:"label"`
}

type accessCodeResponse struct {
	AccessCode accessCodeDTO `json:"access_code"`
}

type listAccessCodesResponse struct {
	AccessCodes []accessCodeDTO `json:"access_codes"`
}

type accessCodeDTO struct {
	ID     string  `json:"id"`
	Code   string  `json:"code"`
	Label  *string `json:"label,omitempty"`
	Active bool    `json:"active"`
}

func toAccessCodeDTO(code application.AccessCode) accessCodeDTO {
	return accessCodeDTO{
		ID:     code.ID,
		Code:   code.Code,
		Label:  code.Label,
		Active: code.Active,
	}
}
