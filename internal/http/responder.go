package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/wedding-seating/internal/application"
)

var (
	errBadRequestBody      = errors.New("le format de la requête est invalide.")
	errInvalidGuestID      = errors.New("l'identifiant de l'invité est invalide.")
	errInvalidTableID      = errors.New("l'identifiant de la table est invalide.")
	errMissingSessionToken = errors.New("veuillez fournir un jeton de session")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "vous n'êtes pas autorisé à effectuer cette opération.",
		})
	case errors.Is(err, application.ErrSessionExpired), errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_EXPIRED",
			Message:   "votre session a expiré. veuillez vous reconnecter.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "la ressource demandée est introuvable."})
	case errors.Is(err, application.ErrDuplicateCode):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "DUPLICATE_CODE",
			Message:   "ce code ou ce numéro est déjà utilisé.",
		})
	case errors.Is(err, application.ErrSeatTaken):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "SEAT_TAKEN",
			Message:   "cette place est déjà occupée.",
		})
	case errors.Is(err, application.ErrTableFull):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "TABLE_FULL",
			Message:   "cette table est complète.",
		})
	case errors.Is(err, application.ErrTableOccupied):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "TABLE_OCCUPIED",
			Message:   "des invités sont encore assis à cette table.",
		})
	case errors.Is(err, application.ErrInvalidToken):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "INVALID_TOKEN",
			Message:   "ce code d'invité n'est pas reconnu.",
		})
	case errors.Is(err, application.ErrInvalidAccessCode):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "INVALID_ACCESS_CODE",
			Message:   "ce code d'accès n'est pas valide.",
		})
	case errors.Is(err, application.ErrInvalidInvitationCode):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "INVALID_INVITATION_CODE",
			Message:   "ce code d'invitation n'est pas reconnu.",
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			details := localizeValidationErrors(vErr)
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "le contenu saisi est incorrect.",
				Errors:  details,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "une erreur interne est survenue."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "le contenu de la requête est incorrect."
	case http.StatusUnauthorized:
		return "une authentification est requise."
	case http.StatusForbidden:
		return "vous n'êtes pas autorisé à effectuer cette opération."
	case http.StatusNotFound:
		return "la ressource demandée est introuvable."
	case http.StatusConflict:
		return "la requête entre en conflit avec l'état actuel de la ressource."
	case http.StatusUnprocessableEntity:
		return "le contenu saisi est incorrect."
	default:
		return "une erreur interne est survenue."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "first name is required":
		return "le prénom est requis."
	case "last name is required":
		return "le nom est requis."
	case "party size must not be negative":
		return "le nombre d'accompagnants doit être positif ou nul."
	case "rsvp status is invalid":
		return "le statut de réponse est invalide."
	case "table number must be positive":
		return "le numéro de table doit être un entier positif."
	case "capacity must be positive":
		return "la capacité doit être un entier positif."
	case "seat number is out of range":
		return "le numéro de place est hors limites."
	case "access code is required":
		return "le code d'accès est requis."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
