package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/wedding-seating/internal/persistence"
)

func setupTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	dir := t.TempDir()
	pool, err := Open(filepath.Join(dir, "seating.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = pool.Close()
	})

	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return pool
}

func testGuest(id string) persistence.Guest {
	created := time.Date(2026, time.June, 20, 14, 0, 0, 0, time.UTC)
	return persistence.Guest{
		ID:             id,
		FirstName:      "Claire",
		LastName:       "Moreau",
		InvitationCode: "WEDDING-" + id,
		GuestCode:      "CODE-" + id,
		QRToken:        "WEDDING-token-" + id,
		RSVPStatus:     "confirmed",
		PartySize:      1,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

func testTable(id string, number, capacity int) persistence.Table {
	created := time.Date(2026, time.June, 20, 14, 0, 0, 0, time.UTC)
	return persistence.Table{
		ID:        id,
		Number:    number,
		Capacity:  capacity,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	pool := setupTestPool(t)

	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestErrorMapper(t *testing.T) {
	mapper := NewErrorMapper()

	tests := []struct {
		name     string
		input    error
		expected error
	}{
		{
			name:     "nil passes through",
			input:    nil,
			expected: nil,
		},
		{
			name:     "no rows becomes not found",
			input:    sql.ErrNoRows,
			expected: persistence.ErrNotFound,
		},
		{
			name:     "seat index violation becomes seat taken",
			input:    fmt.Errorf("constraint failed: UNIQUE constraint failed: seating_assignments.table_id, seating_assignments.seat_number"),
			expected: persistence.ErrSeatTaken,
		},
		{
			name:     "other unique violation becomes duplicate",
			input:    fmt.Errorf("constraint failed: UNIQUE constraint failed: guests.guest_code"),
			expected: persistence.ErrDuplicate,
		},
		{
			name:     "check violation becomes constraint violation",
			input:    fmt.Errorf("constraint failed: CHECK constraint failed: capacity"),
			expected: persistence.ErrConstraintViolation,
		},
		{
			name:     "foreign key violation becomes constraint violation",
			input:    fmt.Errorf("constraint failed: FOREIGN KEY constraint failed"),
			expected: persistence.ErrConstraintViolation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mapper.MapError(tc.input)
			if tc.expected == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if !errors.Is(got, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}
