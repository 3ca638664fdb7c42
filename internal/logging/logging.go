// Package logging carries request-scoped slog loggers through context so the
// HTTP middleware, handlers and seating services share one set of request
// attributes per log line.
package logging

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// ContextWithLogger attaches the logger to a derived context. A nil context
// or logger leaves the input untouched.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger carried by the context, or nil when none
// was attached; callers fall back to their own logger in that case.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(contextKey{}).(*slog.Logger)
	return logger
}
