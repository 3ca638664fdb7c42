package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/wedding-seating/internal/application"
	"github.com/example/wedding-seating/internal/testfixtures"
)

func newCheckInHarness(t *testing.T) (*application.CheckInService, *testfixtures.MemoryStore, *testfixtures.Clock) {
	t.Helper()
	store := testfixtures.NewMemoryStore()
	clock := testfixtures.NewClock(time.Time{})
	svc := application.NewCheckInService(store, store, store, clock.NowFunc())
	return svc, store, clock
}

func TestCheckInService_CheckIn(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc, store, _ := newCheckInHarness(t)
		guestID := seedGuest(t, store)

		_, err := svc.CheckIn(context.Background(), application.Principal{}, guestID)
		if !errors.Is(err, application.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("marks a guest present with the current time", func(t *testing.T) {
		svc, store, clock := newCheckInHarness(t)
		guestID := seedGuest(t, store)

		result, err := svc.CheckIn(context.Background(), adminPrincipal(), guestID)
		if err != nil {
			t.Fatalf("check-in failed: %v", err)
		}
		if result.AlreadyCheckedIn {
			t.Fatal("first check-in reported as repeat")
		}
		if result.Guest.CheckedInAt == nil || !result.Guest.CheckedInAt.Equal(clock.Now()) {
			t.Fatalf("unexpected check-in timestamp: %v", result.Guest.CheckedInAt)
		}
	})

	t.Run("repeat check-in preserves the original timestamp", func(t *testing.T) {
		svc, store, clock := newCheckInHarness(t)
		guestID := seedGuest(t, store)

		first, err := svc.CheckIn(context.Background(), adminPrincipal(), guestID)
		if err != nil {
			t.Fatalf("first check-in failed: %v", err)
		}

		clock.Advance(45 * time.Minute)

		second, err := svc.CheckIn(context.Background(), adminPrincipal(), guestID)
		if err != nil {
			t.Fatalf("second check-in failed: %v", err)
		}
		if !second.AlreadyCheckedIn {
			t.Fatal("expected repeat check-in to be flagged")
		}
		if second.Guest.CheckedInAt == nil || !second.Guest.CheckedInAt.Equal(*first.Guest.CheckedInAt) {
			t.Fatalf("expected original timestamp %v, got %v", first.Guest.CheckedInAt, second.Guest.CheckedInAt)
		}
	})

	t.Run("reports unknown guests", func(t *testing.T) {
		svc, _, _ := newCheckInHarness(t)

		_, err := svc.CheckIn(context.Background(), adminPrincipal(), "missing")
		if !errors.Is(err, application.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestCheckInService_CheckOut(t *testing.T) {
	t.Run("clears presence and tolerates repeats", func(t *testing.T) {
		svc, store, _ := newCheckInHarness(t)
		guestID := seedGuest(t, store)

		if _, err := svc.CheckIn(context.Background(), adminPrincipal(), guestID); err != nil {
			t.Fatalf("check-in failed: %v", err)
		}

		guest, err := svc.CheckOut(context.Background(), adminPrincipal(), guestID)
		if err != nil {
			t.Fatalf("check-out failed: %v", err)
		}
		if guest.CheckedIn || guest.CheckedInAt != nil {
			t.Fatalf("expected cleared presence, got %+v", guest)
		}

		if _, err := svc.CheckOut(context.Background(), adminPrincipal(), guestID); err != nil {
			t.Fatalf("repeated check-out failed: %v", err)
		}
	})
}

func TestCheckInService_Scan(t *testing.T) {
	t.Run("resolves a QR token and returns the seat summary", func(t *testing.T) {
		svc, store, _ := newCheckInHarness(t)
		fixture := testfixtures.NewGuestFixture(testfixtures.WithGuestQRToken("WEDDING-badge-1"))
		if err := store.CreateGuest(context.Background(), fixture.Persistence()); err != nil {
			t.Fatalf("failed to seed guest: %v", err)
		}
		tableFixture := testfixtures.NewTableFixture(testfixtures.WithTableNumber(7), testfixtures.WithTableCapacity(4))
		if err := store.CreateTable(context.Background(), tableFixture.Persistence()); err != nil {
			t.Fatalf("failed to seed table: %v", err)
		}

		seating := application.NewSeatingService(store, store, store, testfixtures.NewIDGenerator("assignment").NextFunc(), testfixtures.NewClock(time.Time{}).NowFunc())
		if _, err := seating.AssignSeat(context.Background(), application.AssignSeatParams{
			Principal: adminPrincipal(),
			GuestID:   fixture.ID,
			TableID:   tableFixture.ID,
		}); err != nil {
			t.Fatalf("assignment failed: %v", err)
		}

		result, err := svc.Scan(context.Background(), adminPrincipal(), "WEDDING-badge-1")
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		if result.Guest.ID != fixture.ID {
			t.Fatalf("resolved wrong guest: %s", result.Guest.ID)
		}
		if !result.Guest.CheckedIn {
			t.Fatal("expected scan to check the guest in")
		}
		if result.TableNumber == nil || *result.TableNumber != 7 {
			t.Fatalf("expected table number 7, got %v", result.TableNumber)
		}
		if result.SeatNumber == nil || *result.SeatNumber != 1 {
			t.Fatalf("expected seat 1, got %v", result.SeatNumber)
		}
	})

	t.Run("falls back to the guest code case-insensitively", func(t *testing.T) {
		svc, store, _ := newCheckInHarness(t)
		fixture := testfixtures.NewGuestFixture()
		if err := store.CreateGuest(context.Background(), fixture.Persistence()); err != nil {
			t.Fatalf("failed to seed guest: %v", err)
		}

		result, err := svc.Scan(context.Background(), adminPrincipal(), fixture.GuestCode)
		if err != nil {
			t.Fatalf("scan by guest code failed: %v", err)
		}
		if result.Guest.ID != fixture.ID {
			t.Fatalf("resolved wrong guest: %s", result.Guest.ID)
		}
		if result.SeatNumber != nil {
			t.Fatalf("expected nil seat for unseated guest, got %v", result.SeatNumber)
		}
	})

	t.Run("rejects unknown and blank tokens", func(t *testing.T) {
		svc, _, _ := newCheckInHarness(t)

		if _, err := svc.Scan(context.Background(), adminPrincipal(), "unknown-token"); !errors.Is(err, application.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
		if _, err := svc.Scan(context.Background(), adminPrincipal(), "   "); !errors.Is(err, application.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for blank token, got %v", err)
		}
	})
}
