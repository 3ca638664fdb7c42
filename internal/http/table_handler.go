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

type tableService interface {
	CreateTable(ctx context.Context, params application.CreateTableParams) (application.Table, error)
	UpdateTable(ctx context.Context, params application.UpdateTableParams) (application.Table, error)
	GetTable(ctx context.Context, principal application.Principal, tableID string) (application.Table, error)
	ListTables(ctx context.Context, principal application.Principal) ([]application.Table, error)
	DeleteTable(ctx context.Context, principal application.Principal, tableID string) error
}

type TableHandler struct {
	service   tableService
	responder responder
	logger    *slog.Logger
}

func NewTableHandler(service tableService, logger *slog.Logger) *TableHandler {
	base := defaultLogger(logger)
	return &TableHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TableHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TableHandler", operation, attrs...)
}

func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.SessionID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode table request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.SessionID)

	table, err := h.service.CreateTable(r.Context(), application.CreateTableParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "table creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("table_id", table.ID).InfoContext(r.Context(), "table created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, tableResponse{Table: toTableDTO(table)})
}

func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tableID, ok := TableIDFromContext(r.Context())
	if !ok || strings.TrimSpace(tableID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing table id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTableID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.SessionID, "table_id", tableID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode table update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.SessionID, "table_id", tableID)

	table, err := h.service.UpdateTable(r.Context(), application.UpdateTableParams{
		Principal: principal,
		TableID:   tableID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "table update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "table updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, tableResponse{Table: toTableDTO(table)})
}

func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tableID, ok := TableIDFromContext(r.Context())
	if !ok || strings.TrimSpace(tableID) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing table id for fetch")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTableID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.SessionID, "table_id", tableID)

	table, err := h.service.GetTable(r.Context(), principal, tableID)
	if err != nil {
		logger.ErrorContext(r.Context(), "table fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, tableResponse{Table: toTableDTO(table)})
}

func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tableID, ok := TableIDFromContext(r.Context())
	if !ok || strings.TrimSpace(tableID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing table id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTableID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.SessionID, "table_id", tableID)

	if err := h.service.DeleteTable(r.Context(), principal, tableID); err != nil {
		logger.ErrorContext(r.Context(), "table delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "table deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
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

	logger := h.log(r.Context(), "List", "principal_id", principal.SessionID)

	tables, err := h.service.ListTables(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "table list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(tables)).InfoContext(r.Context(), "tables listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listTablesResponse{Tables: toTableDTOs(tables)})
}

type tableRequest struct {
	Number   int     `json:"table_number"`
	Name     *string `json:"name"`
	Capacity int     `json:"capacity"`
	VIP      bool    `json:"vip"`
	Color    *string `json:"color"`
}

func (r tableRequest) toInput() application.TableInput {
	return application.TableInput{
		Number:   r.Number,
		Name:     r.Name,
		Capacity: r.Capacity,
		VIP:      r.VIP,
		Color:    r.Color,
	}
}

type tableResponse struct {
	Table tableDTO `json:"table"`
}

type listTablesResponse struct {
	Tables []tableDTO `json:"tables"`
}

type tableDTO struct {
	ID        string  `json:"id"`
	Number    int     `json:"table_number"`
	Name      *string `json:"name,omitempty"`
	Capacity  int     `json:"capacity"`
	VIP       bool    `json:"vip"`
	Color     *string `json:"color,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func toTableDTO(table application.Table) tableDTO {
	return tableDTO{
		ID:        table.ID,
		Number:    table.Number,
		Name:      table.Name,
		Capacity:  table.Capacity,
		VIP:       table.VIP,
		Color:     table.Color,
		CreatedAt: table.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: table.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toTableDTOs(tables []application.Table) []tableDTO {
	if len(tables) == 0 {
		return nil
	}
	out := make([]tableDTO, 0, len(tables))
	for _, table := range tables {
		out = append(out, toTableDTO(table))
	}
	return out
}
