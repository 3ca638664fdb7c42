package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/wedding-seating/internal/persistence"
)

func testSession(id, token string, expiresAt time.Time) persistence.Session {
	created := time.Date(2026, time.June, 20, 14, 0, 0, 0, time.UTC)
	return persistence.Session{
		ID:        id,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestSessionRepository(t *testing.T) {
	reference := time.Date(2026, time.June, 20, 16, 0, 0, 0, time.UTC)

	t.Run("create and get", func(t *testing.T) {
		repo := NewSessionRepository(setupTestPool(t))
		ctx := context.Background()

		created, err := repo.CreateSession(ctx, testSession("session-1", "token-1", reference.Add(time.Hour)))
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if created.ID != "session-1" || created.RevokedAt != nil {
			t.Fatalf("unexpected session: %+v", created)
		}

		retrieved, err := repo.GetSession(ctx, "token-1")
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if !retrieved.ExpiresAt.Equal(reference.Add(time.Hour)) {
			t.Fatalf("expiry did not round trip: %v", retrieved.ExpiresAt)
		}
	})

	t.Run("revoking twice reports not found", func(t *testing.T) {
		repo := NewSessionRepository(setupTestPool(t))
		ctx := context.Background()

		if _, err := repo.CreateSession(ctx, testSession("session-1", "token-1", reference.Add(time.Hour))); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}

		revoked, err := repo.RevokeSession(ctx, "token-1", reference)
		if err != nil {
			t.Fatalf("RevokeSession failed: %v", err)
		}
		if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(reference) {
			t.Fatalf("unexpected revocation state: %+v", revoked)
		}

		if _, err := repo.RevokeSession(ctx, "token-1", reference); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for repeated revocation, got %v", err)
		}
	})

	t.Run("prunes only expired sessions", func(t *testing.T) {
		repo := NewSessionRepository(setupTestPool(t))
		ctx := context.Background()

		if _, err := repo.CreateSession(ctx, testSession("session-1", "stale", reference.Add(-time.Minute))); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if _, err := repo.CreateSession(ctx, testSession("session-2", "fresh", reference.Add(time.Hour))); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}

		if err := repo.DeleteExpiredSessions(ctx, reference); err != nil {
			t.Fatalf("DeleteExpiredSessions failed: %v", err)
		}

		if _, err := repo.GetSession(ctx, "stale"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected stale session to be pruned, got %v", err)
		}
		if _, err := repo.GetSession(ctx, "fresh"); err != nil {
			t.Fatalf("expected fresh session to survive, got %v", err)
		}
	})
}

func TestAccessCodeRepository(t *testing.T) {
	created := time.Date(2026, time.June, 20, 14, 0, 0, 0, time.UTC)

	t.Run("codes resolve case-insensitively", func(t *testing.T) {
		repo := NewAccessCodeRepository(setupTestPool(t))
		ctx := context.Background()

		if err := repo.CreateAccessCode(ctx, persistence.AccessCode{
			ID:        "code-1",
			Code:      "MARIAGE2026",
			Active:    true,
			CreatedAt: created,
		}); err != nil {
			t.Fatalf("CreateAccessCode failed: %v", err)
		}

		code, err := repo.GetAccessCode(ctx, "mariage2026")
		if err != nil {
			t.Fatalf("GetAccessCode failed: %v", err)
		}
		if code.ID != "code-1" || !code.Active {
			t.Fatalf("unexpected access code: %+v", code)
		}
	})

	t.Run("duplicate codes are rejected", func(t *testing.T) {
		repo := NewAccessCodeRepository(setupTestPool(t))
		ctx := context.Background()

		if err := repo.CreateAccessCode(ctx, persistence.AccessCode{
			ID: "code-1", Code: "MARIAGE2026", Active: true, CreatedAt: created,
		}); err != nil {
			t.Fatalf("CreateAccessCode failed: %v", err)
		}
		err := repo.CreateAccessCode(ctx, persistence.AccessCode{
			ID: "code-2", Code: "mariage2026", Active: true, CreatedAt: created,
		})
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("lists codes in creation order", func(t *testing.T) {
		repo := NewAccessCodeRepository(setupTestPool(t))
		ctx := context.Background()

		for i, code := range []string{"PREMIER", "SECOND"} {
			if err := repo.CreateAccessCode(ctx, persistence.AccessCode{
				ID:        "code-" + code,
				Code:      code,
				Active:    true,
				CreatedAt: created.Add(time.Duration(i) * time.Minute),
			}); err != nil {
				t.Fatalf("CreateAccessCode failed: %v", err)
			}
		}

		codes, err := repo.ListAccessCodes(ctx)
		if err != nil {
			t.Fatalf("ListAccessCodes failed: %v", err)
		}
		if len(codes) != 2 || codes[0].Code != "PREMIER" {
			t.Fatalf("unexpected list: %+v", codes)
		}
	})
}
