package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/wedding-seating/internal/application"
	"github.com/example/wedding-seating/internal/testfixtures"
)

const operatorPassword = "correct horse battery staple"

func newAuthHarness(t *testing.T, ttl time.Duration) (*application.AuthService, *testfixtures.MemoryStore, *testfixtures.Clock) {
	t.Helper()
	hash, err := application.CreatePasswordHash(operatorPassword, application.DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	store := testfixtures.NewMemoryStore()
	clock := testfixtures.NewClock(time.Time{})
	ids := testfixtures.NewIDGenerator("session")
	svc := application.NewAuthServiceWithLogger(store, hash, nil, ids.NextFunc(), nil, clock.NowFunc(), ttl, nil)
	return svc, store, clock
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Run("issues a session for the correct password", func(t *testing.T) {
		svc, _, clock := newAuthHarness(t, time.Hour)

		result, err := svc.Authenticate(context.Background(), operatorPassword)
		if err != nil {
			t.Fatalf("authentication failed: %v", err)
		}
		if result.Session.Token == "" {
			t.Fatal("expected a session token")
		}
		if !result.Session.ExpiresAt.Equal(clock.Now().Add(time.Hour)) {
			t.Fatalf("unexpected expiry: %v", result.Session.ExpiresAt)
		}
	})

	t.Run("rejects a wrong or empty password", func(t *testing.T) {
		svc, _, _ := newAuthHarness(t, time.Hour)

		if _, err := svc.Authenticate(context.Background(), "wrong"); !errors.Is(err, application.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if _, err := svc.Authenticate(context.Background(), ""); !errors.Is(err, application.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for empty password, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Run("accepts an active session", func(t *testing.T) {
		svc, _, _ := newAuthHarness(t, time.Hour)

		result, err := svc.Authenticate(context.Background(), operatorPassword)
		if err != nil {
			t.Fatalf("authentication failed: %v", err)
		}

		principal, err := svc.ValidateSession(context.Background(), result.Session.Token)
		if err != nil {
			t.Fatalf("validation failed: %v", err)
		}
		if !principal.IsAdmin || principal.SessionID != result.Session.ID {
			t.Fatalf("unexpected principal: %+v", principal)
		}
	})

	t.Run("rejects an expired session", func(t *testing.T) {
		svc, _, clock := newAuthHarness(t, time.Hour)

		result, err := svc.Authenticate(context.Background(), operatorPassword)
		if err != nil {
			t.Fatalf("authentication failed: %v", err)
		}

		clock.Advance(2 * time.Hour)

		if _, err := svc.ValidateSession(context.Background(), result.Session.Token); !errors.Is(err, application.ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects a revoked session", func(t *testing.T) {
		svc, _, _ := newAuthHarness(t, time.Hour)

		result, err := svc.Authenticate(context.Background(), operatorPassword)
		if err != nil {
			t.Fatalf("authentication failed: %v", err)
		}
		if err := svc.RevokeSession(context.Background(), result.Session.Token); err != nil {
			t.Fatalf("revocation failed: %v", err)
		}

		if _, err := svc.ValidateSession(context.Background(), result.Session.Token); !errors.Is(err, application.ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("rejects unknown and blank tokens", func(t *testing.T) {
		svc, _, _ := newAuthHarness(t, time.Hour)

		if _, err := svc.ValidateSession(context.Background(), "unknown"); !errors.Is(err, application.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if _, err := svc.ValidateSession(context.Background(), "  "); !errors.Is(err, application.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for blank token, got %v", err)
		}
	})
}

func TestAuthService_RevokeSession(t *testing.T) {
	t.Run("revoking twice reports invalid credentials", func(t *testing.T) {
		svc, _, _ := newAuthHarness(t, time.Hour)

		result, err := svc.Authenticate(context.Background(), operatorPassword)
		if err != nil {
			t.Fatalf("authentication failed: %v", err)
		}
		if err := svc.RevokeSession(context.Background(), result.Session.Token); err != nil {
			t.Fatalf("revocation failed: %v", err)
		}

		if err := svc.RevokeSession(context.Background(), result.Session.Token); !errors.Is(err, application.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}
