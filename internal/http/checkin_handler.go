package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/wedding-seating/internal/application"
	"github.com/example/wedding-seating/internal/metrics"
)

type checkInService interface {
	CheckIn(ctx context.Context, principal application.Principal, guestID string) (application.CheckInResult, error)
	CheckOut(ctx context.Context, principal application.Principal, guestID string) (application.Guest, error)
	Scan(ctx context.Context, principal application.Principal, token string) (application.ScanResult, error)
}

type CheckInHandler struct {
	service   checkInService
	responder responder
	logger    *slog.Logger
}

func NewCheckInHandler(service checkInService, logger *slog.Logger) *CheckInHandler {
	base := defaultLogger(logger)
	return &CheckInHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CheckInHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CheckInHandler", operation, attrs...)
}

func (h *CheckInHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	guestID, ok := GuestIDFromContext(r.Context())
	if !ok || strings.TrimSpace(guestID) == "" {
		h.log(r.Context(), "CheckIn", "error_kind", "bad_request").ErrorContext(r.Context(), "missing guest id for check-in")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGuestID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "CheckIn", "principal_id", principal.SessionID, "guest_id", guestID)

	result, err := h.service.CheckIn(r.Context(), principal, guestID)
	if err != nil {
		logger.ErrorContext(r.Context(), "check-in failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	metrics.CheckInTotal.WithLabelValues(strconv.FormatBool(result.AlreadyCheckedIn)).Inc()
	logger.With("already_checked_in", result.AlreadyCheckedIn).InfoContext(r.Context(), "guest checked in")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, checkInResponse{
		Guest:            toGuestDTO(result.Guest),
		AlreadyCheckedIn: result.AlreadyCheckedIn,
	})
}

func (h *CheckInHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	guestID, ok := GuestIDFromContext(r.Context())
	if !ok || strings.TrimSpace(guestID) == "" {
		h.log(r.Context(), "CheckOut", "error_kind", "bad_request").ErrorContext(r.Context(), "missing guest id for check-out")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGuestID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "CheckOut", "principal_id", principal.SessionID, "guest_id", guestID)

	guest, err := h.service.CheckOut(r.Context(), principal, guestID)
	if err != nil {
		logger.ErrorContext(r.Context(), "check-out failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "guest checked out")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, guestResponse{Guest: toGuestDTO(guest)})
}

func (h *CheckInHandler) Scan(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Scan", "principal_id", principal.SessionID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode scan request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Scan", "principal_id", principal.SessionID)

	result, err := h.service.Scan(r.Context(), principal, req.Token)
	if err != nil {
		logger.ErrorContext(r.Context(), "scan failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	metrics.CheckInTotal.WithLabelValues(strconv.FormatBool(result.AlreadyCheckedIn)).Inc()
	logger.With("guest_id", result.Guest.ID, "already_checked_in", result.AlreadyCheckedIn).InfoContext(r.Context(), "scan processed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, scanResponse{
		Guest:            toGuestDTO(result.Guest),
		TableNumber:      result.TableNumber,
		SeatNumber:       result.SeatNumber,
		AlreadyCheckedIn: result.AlreadyCheckedIn,
	})
}

type checkInResponse struct {
	Guest            guestDTO `json:"guest"`
	AlreadyCheckedIn bool     `json:"already_checked_in"`
}

type scanRequest struct {
	Token string `json:"token"`
}

type scanResponse struct {
	Guest            guestDTO `json:"guest"`
	TableNumber      *int     `json:"table_number,omitempty"`
	SeatNumber       *int     `json:"seat_number,omitempty"`
	AlreadyCheckedIn bool     `json:"already_checked_in"`
}
