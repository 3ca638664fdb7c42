package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/example/wedding-seating/internal/application"
)

const (
	defaultBadgeSize = 256
	maxBadgeSize     = 1024
)

type badgeService interface {
	GetGuest(ctx context.Context, principal application.Principal, guestID string) (application.Guest, error)
}

// BadgeHandler renders the printable QR badge for a guest. The QR payload is
// the guest's durable token, so a reprinted badge always scans to the same
// guest.
type BadgeHandler struct {
	service   badgeService
	responder responder
	logger    *slog.Logger
}

func NewBadgeHandler(service badgeService, logger *slog.Logger) *BadgeHandler {
	base := defaultLogger(logger)
	return &BadgeHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BadgeHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BadgeHandler", operation, attrs...)
}

func (h *BadgeHandler) Render(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	guestID, ok := GuestIDFromContext(r.Context())
	if !ok || strings.TrimSpace(guestID) == "" {
		h.log(r.Context(), "Render", "error_kind", "bad_request").ErrorContext(r.Context(), "missing guest id for badge render")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGuestID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Render", "principal_id", principal.SessionID, "guest_id", guestID)

	guest, err := h.service.GetGuest(r.Context(), principal, guestID)
	if err != nil {
		logger.ErrorContext(r.Context(), "badge render failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	size := defaultBadgeSize
	if raw := strings.TrimSpace(r.URL.Query().Get("size")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 64 || parsed > maxBadgeSize {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		size = parsed
	}

	png, err := qrcode.Encode(guest.QRToken, qrcode.Medium, size)
	if err != nil {
		logger.ErrorContext(r.Context(), "qr encoding failed", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
		return
	}

	logger.InfoContext(r.Context(), "badge rendered", "size", size)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		logger.ErrorContext(r.Context(), "failed to write badge response", "error", err)
	}
}
