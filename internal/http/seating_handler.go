package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/wedding-seating/internal/application"
	"github.com/example/wedding-seating/internal/metrics"
)

type seatingService interface {
	AssignSeat(ctx context.Context, params application.AssignSeatParams) (application.SeatAssignment, error)
	MoveGuest(ctx context.Context, params application.MoveGuestParams) (application.MoveResult, error)
	RemoveFromTable(ctx context.Context, principal application.Principal, guestID string) error
	GetAssignment(ctx context.Context, principal application.Principal, guestID string) (application.SeatAssignment, error)
	FindNextFreeSeat(ctx context.Context, principal application.Principal, tableID string) (int, error)
	TableStatuses(ctx context.Context, principal application.Principal) ([]application.TableStatus, error)
	GuestStatuses(ctx context.Context, principal application.Principal) ([]application.GuestStatus, error)
}

type SeatingHandler struct {
	service   seatingService
	responder responder
	logger    *slog.Logger
}

func NewSeatingHandler(service seatingService, logger *slog.Logger) *SeatingHandler {
	base := defaultLogger(logger)
	return &SeatingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SeatingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SeatingHandler", operation, attrs...)
}

func (h *SeatingHandler) Assign(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Assign", "principal_id", principal.SessionID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode assignment request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Assign",
		"principal_id", principal.SessionID,
		"guest_id", req.GuestID,
		"table_id", req.TableID,
	)

	assignment, err := h.service.AssignSeat(r.Context(), application.AssignSeatParams{
		Principal:  principal,
		GuestID:    strings.TrimSpace(req.GuestID),
		TableID:    strings.TrimSpace(req.TableID),
		SeatNumber: req.SeatNumber,
	})
	if err != nil {
		metrics.SeatAssignmentTotal.WithLabelValues(assignOutcome(err)).Inc()
		logger.ErrorContext(r.Context(), "seat assignment failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	metrics.SeatAssignmentTotal.WithLabelValues("assigned").Inc()
	logger.With("seat_number", assignment.SeatNumber).InfoContext(r.Context(), "seat assigned")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, assignmentResponse{Assignment: toAssignmentDTO(assignment)})
}

func (h *SeatingHandler) Move(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Move", "principal_id", principal.SessionID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode move request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Move",
		"principal_id", principal.SessionID,
		"guest_id", req.GuestID,
		"table_id", req.TableID,
	)

	result, err := h.service.MoveGuest(r.Context(), application.MoveGuestParams{
		Principal: principal,
		GuestID:   strings.TrimSpace(req.GuestID),
		TableID:   strings.TrimSpace(req.TableID),
	})
	if err != nil {
		metrics.SeatAssignmentTotal.WithLabelValues(assignOutcome(err)).Inc()
		logger.ErrorContext(r.Context(), "guest move failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	metrics.SeatAssignmentTotal.WithLabelValues("moved").Inc()
	logger.With("already_at_table", result.AlreadyAtTable).InfoContext(r.Context(), "guest move processed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, moveResponse{
		Assignment:     toAssignmentDTO(result.Assignment),
		AlreadyAtTable: result.AlreadyAtTable,
	})
}

func (h *SeatingHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	guestID, ok := GuestIDFromContext(r.Context())
	if !ok || strings.TrimSpace(guestID) == "" {
		h.log(r.Context(), "Remove", "error_kind", "bad_request").ErrorContext(r.Context(), "missing guest id for unassignment")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGuestID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Remove", "principal_id", principal.SessionID, "guest_id", guestID)

	if err := h.service.RemoveFromTable(r.Context(), principal, guestID); err != nil {
		logger.ErrorContext(r.Context(), "seat removal failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "guest unassigned")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *SeatingHandler) GetForGuest(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	guestID, ok := GuestIDFromContext(r.Context())
	if !ok || strings.TrimSpace(guestID) == "" {
		h.log(r.Context(), "GetForGuest", "error_kind", "bad_request").ErrorContext(r.Context(), "missing guest id for assignment fetch")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGuestID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "GetForGuest", "principal_id", principal.SessionID, "guest_id", guestID)

	assignment, err := h.service.GetAssignment(r.Context(), principal, guestID)
	if err != nil {
		logger.ErrorContext(r.Context(), "assignment fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, assignmentResponse{Assignment: toAssignmentDTO(assignment)})
}

func (h *SeatingHandler) NextSeat(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tableID, ok := TableIDFromContext(r.Context())
	if !ok || strings.TrimSpace(tableID) == "" {
		h.log(r.Context(), "NextSeat", "error_kind", "bad_request").ErrorContext(r.Context(), "missing table id for next seat lookup")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTableID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "NextSeat", "principal_id", principal.SessionID, "table_id", tableID)

	seat, err := h.service.FindNextFreeSeat(r.Context(), principal, tableID)
	if err != nil {
		logger.ErrorContext(r.Context(), "next seat lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, nextSeatResponse{SeatNumber: seat})
}

func (h *SeatingHandler) TableStatuses(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "TableStatuses", "principal_id", principal.SessionID)

	statuses, err := h.service.TableStatuses(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "table status view failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]tableStatusDTO, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, tableStatusDTO{
			Table:     toTableDTO(status.Table),
			Occupied:  status.Occupied,
			Available: status.Available,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, tableStatusesResponse{Tables: out})
}

func (h *SeatingHandler) GuestStatuses(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "GuestStatuses", "principal_id", principal.SessionID)

	statuses, err := h.service.GuestStatuses(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "guest status view failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]guestStatusDTO, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, guestStatusDTO{
			Guest:       toGuestDTO(status.Guest),
			TableID:     status.TableID,
			TableNumber: status.TableNumber,
			SeatNumber:  status.SeatNumber,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, guestStatusesResponse{Guests: out})
}

func assignOutcome(err error) string {
	switch {
	case errors.Is(err, application.ErrTableFull):
		return "table_full"
	case errors.Is(err, application.ErrSeatTaken):
		return "seat_taken"
	default:
		return "error"
	}
}

type assignmentRequest struct {
	GuestID    string `json:"guest_id"`
	TableID    string `json:"table_id"`
	SeatNumber *int   `json:"seat_number"`
}

type moveRequest struct {
	GuestID string `json:"guest_id"`
	TableID string `json:"table_id"`
}

type assignmentResponse struct {
	Assignment assignmentDTO `json:"assignment"`
}

type moveResponse struct {
	Assignment     assignmentDTO `json:"assignment"`
	AlreadyAtTable bool          `json:"already_at_table"`
}

type nextSeatResponse struct {
	SeatNumber int `json:"seat_number"`
}

type assignmentDTO struct {
	ID         string `json:"id"`
	GuestID    string `json:"guest_id"`
	TableID    string `json:"table_id"`
	SeatNumber int    `json:"seat_number"`
	CreatedAt  string `json:"created_at"`
}

func toAssignmentDTO(assignment application.SeatAssignment) assignmentDTO {
	return assignmentDTO{
		ID:         assignment.ID,
		GuestID:    assignment.GuestID,
		TableID:    assignment.TableID,
		SeatNumber: assignment.SeatNumber,
		CreatedAt:  assignment.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

type tableStatusDTO struct {
	Table     tableDTO `json:"table"`
	Occupied  int      `json:"occupied"`
	Available int      `json:"available"`
}

type tableStatusesResponse struct {
	Tables []tableStatusDTO `json:"tables"`
}

type guestStatusDTO struct {
	Guest       guestDTO `json:"guest"`
	TableID     *string  `json:"table_id,omitempty"`
	TableNumber *int     `json:"table_number,omitempty"`
	SeatNumber  *int     `json:"seat_number,omitempty"`
}

type guestStatusesResponse struct {
	Guests []guestStatusDTO `json:"guests"`
}
