package http

import (
	"context"

	"github.com/example/wedding-seating/internal/application"
)

type contextKey string

const (
	principalContextKey contextKey = "principal"
	guestIDContextKey   contextKey = "guest_id"
	tableIDContextKey   contextKey = "table_id"
	rsvpCodeContextKey  contextKey = "rsvp_code"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithGuestID injects the guest identifier resolved from the request path.
func ContextWithGuestID(ctx context.Context, guestID string) context.Context {
	return context.WithValue(ctx, guestIDContextKey, guestID)
}

// GuestIDFromContext extracts a guest identifier previously associated with the context.
func GuestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(guestIDContextKey).(string)
	return id, ok
}

// ContextWithTableID injects the table identifier resolved from the request path.
func ContextWithTableID(ctx context.Context, tableID string) context.Context {
	return context.WithValue(ctx, tableIDContextKey, tableID)
}

// TableIDFromContext extracts a table identifier previously associated with the context.
func TableIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(tableIDContextKey).(string)
	return id, ok
}

// ContextWithRSVPCode injects the invitation code resolved from the request path.
func ContextWithRSVPCode(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, rsvpCodeContextKey, code)
}

// RSVPCodeFromContext extracts an invitation code previously associated with the context.
func RSVPCodeFromContext(ctx context.Context) (string, bool) {
	code, ok := ctx.Value(rsvpCodeContextKey).(string)
	return code, ok
}
