package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/wedding-seating/internal/application"
)

type fakeSessionValidator struct {
	principal application.Principal
	err       error
}

func (f fakeSessionValidator) ValidateSession(_ context.Context, _ string) (application.Principal, error) {
	return f.principal, f.err
}

func TestRequireSession(t *testing.T) {
	t.Run("rejects requests without valid session tokens", func(t *testing.T) {
		tests := []struct {
			name           string
			cookieToken    *http.Cookie
			headerToken    string
			lookupError    error
			expectedStatus int
		}{
			{
				name:           "missing credentials",
				expectedStatus: http.StatusUnauthorized,
			},
			{
				name:           "unknown token",
				headerToken:    "Bearer malformed",
				lookupError:    application.ErrUnauthorized,
				expectedStatus: http.StatusUnauthorized,
			},
			{
				name:           "expired session",
				cookieToken:    &http.Cookie{Name: "session_token", Value: "expired-token"},
				lookupError:    application.ErrSessionExpired,
				expectedStatus: http.StatusUnauthorized,
			},
			{
				name:           "revoked session",
				cookieToken:    &http.Cookie{Name: "session_token", Value: "revoked-token"},
				lookupError:    application.ErrSessionRevoked,
				expectedStatus: http.StatusUnauthorized,
			},
			{
				name:           "validator failure",
				cookieToken:    &http.Cookie{Name: "session_token", Value: "transient-error"},
				lookupError:    fmt.Errorf("storage unavailable"),
				expectedStatus: http.StatusInternalServerError,
			},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/protected", nil)
				if tc.cookieToken != nil {
					req.AddCookie(tc.cookieToken)
				}
				if tc.headerToken != "" {
					req.Header.Set("Authorization", tc.headerToken)
				}

				recorder := httptest.NewRecorder()
				handler := RequireSession(fakeSessionValidator{err: tc.lookupError}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					t.Fatal("next handler should not be called when authentication fails")
				}))
				handler.ServeHTTP(recorder, req)

				if recorder.Code != tc.expectedStatus {
					t.Fatalf("expected status %d, got %d", tc.expectedStatus, recorder.Code)
				}
			})
		}
	})

	t.Run("attaches authenticated principal to request context", func(t *testing.T) {
		principal := application.Principal{SessionID: "session-123", IsAdmin: true}

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "valid-token"})
		recorder := httptest.NewRecorder()

		handler := RequireSession(fakeSessionValidator{principal: principal}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := PrincipalFromContext(r.Context())
			if !ok {
				t.Fatal("expected principal in request context")
			}
			if got != principal {
				t.Fatalf("unexpected principal: %+v", got)
			}
			w.WriteHeader(http.StatusOK)
		}))
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}
	})

	t.Run("accepts tokens from the Authorization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		recorder := httptest.NewRecorder()

		handler := RequireSession(fakeSessionValidator{principal: application.Principal{IsAdmin: true}}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}
	})
}

func TestExtractTokenFromRequest(t *testing.T) {
	t.Run("prefers the bearer header over the cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})

		if token := extractTokenFromRequest(req); token != "header-token" {
			t.Fatalf("expected header token, got %q", token)
		}
	})

	t.Run("falls back to the session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})

		if token := extractTokenFromRequest(req); token != "cookie-token" {
			t.Fatalf("expected cookie token, got %q", token)
		}
	})
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{path: "/", expected: "/"},
		{path: "/guests", expected: "/guests"},
		{path: "/guests/guest-123", expected: "/guests"},
		{path: "/guests/guest-123/badge", expected: "/guests"},
		{path: "/views/tables", expected: "/views"},
	}

	for _, tc := range tests {
		if got := routeLabel(tc.path); got != tc.expected {
			t.Fatalf("routeLabel(%q) = %q, expected %q", tc.path, got, tc.expected)
		}
	}
}
