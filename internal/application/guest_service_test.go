package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/wedding-seating/internal/application"
	"github.com/example/wedding-seating/internal/testfixtures"
)

func newGuestHarness(t *testing.T) (*application.GuestService, *testfixtures.MemoryStore, *testfixtures.Clock) {
	t.Helper()
	store := testfixtures.NewMemoryStore()
	clock := testfixtures.NewClock(time.Time{})
	ids := testfixtures.NewIDGenerator("guest")
	svc := application.NewGuestService(store, ids.NextFunc(), "WEDDING", clock.NowFunc())
	return svc, store, clock
}

func TestGuestService_CreateGuest(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc, _, _ := newGuestHarness(t)

		_, err := svc.CreateGuest(context.Background(), application.CreateGuestParams{
			Principal: application.Principal{},
			Input:     application.GuestInput{FirstName: "Claire", LastName: "Moreau"},
		})
		if !errors.Is(err, application.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		svc, _, _ := newGuestHarness(t)

		negative := -1
		_, err := svc.CreateGuest(context.Background(), application.CreateGuestParams{
			Principal: adminPrincipal(),
			Input:     application.GuestInput{FirstName: "  ", LastName: "", PartySize: &negative},
		})

		var vErr *application.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"first_name", "last_name", "party_size"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("mints codes and defaults the status to confirmed", func(t *testing.T) {
		svc, _, clock := newGuestHarness(t)

		guest, err := svc.CreateGuest(context.Background(), application.CreateGuestParams{
			Principal: adminPrincipal(),
			Input:     application.GuestInput{FirstName: "Claire", LastName: "Moreau"},
		})
		if err != nil {
			t.Fatalf("creation failed: %v", err)
		}

		if guest.RSVPStatus != application.RSVPConfirmed {
			t.Fatalf("expected confirmed status, got %s", guest.RSVPStatus)
		}
		if len(guest.GuestCode) != 8 {
			t.Fatalf("expected 8 character guest code, got %q", guest.GuestCode)
		}
		if !strings.HasPrefix(guest.QRToken, "WEDDING-") {
			t.Fatalf("expected prefixed QR token, got %q", guest.QRToken)
		}
		if guest.InvitationCode != "WEDDING-"+guest.GuestCode {
			t.Fatalf("expected derived invitation code, got %q", guest.InvitationCode)
		}
		if !guest.CreatedAt.Equal(clock.Now()) {
			t.Fatalf("unexpected creation time: %v", guest.CreatedAt)
		}
	})
}

func TestGuestService_UpdateGuest(t *testing.T) {
	t.Run("partial update keeps codes and unset fields", func(t *testing.T) {
		svc, _, clock := newGuestHarness(t)

		created, err := svc.CreateGuest(context.Background(), application.CreateGuestParams{
			Principal: adminPrincipal(),
			Input:     application.GuestInput{FirstName: "Claire", LastName: "Moreau"},
		})
		if err != nil {
			t.Fatalf("creation failed: %v", err)
		}

		clock.Advance(time.Hour)

		updated, err := svc.UpdateGuest(context.Background(), application.UpdateGuestParams{
			Principal: adminPrincipal(),
			GuestID:   created.ID,
			Input:     application.GuestInput{FirstName: "Camille"},
		})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}

		if updated.FirstName != "Camille" || updated.LastName != "Moreau" {
			t.Fatalf("unexpected names after update: %s %s", updated.FirstName, updated.LastName)
		}
		if updated.GuestCode != created.GuestCode || updated.QRToken != created.QRToken {
			t.Fatal("expected guest code and QR token to be durable across updates")
		}
		if !updated.UpdatedAt.After(updated.CreatedAt) {
			t.Fatalf("expected updated timestamp to advance, got %v", updated.UpdatedAt)
		}
	})

	t.Run("rejects an invalid status", func(t *testing.T) {
		svc, _, _ := newGuestHarness(t)

		created, err := svc.CreateGuest(context.Background(), application.CreateGuestParams{
			Principal: adminPrincipal(),
			Input:     application.GuestInput{FirstName: "Claire", LastName: "Moreau"},
		})
		if err != nil {
			t.Fatalf("creation failed: %v", err)
		}

		_, err = svc.UpdateGuest(context.Background(), application.UpdateGuestParams{
			Principal: adminPrincipal(),
			GuestID:   created.ID,
			Input:     application.GuestInput{RSVPStatus: "maybe"},
		})
		var vErr *application.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestGuestService_DeleteGuest(t *testing.T) {
	t.Run("removes the guest together with their seat", func(t *testing.T) {
		svc, store, _ := newGuestHarness(t)

		created, err := svc.CreateGuest(context.Background(), application.CreateGuestParams{
			Principal: adminPrincipal(),
			Input:     application.GuestInput{FirstName: "Claire", LastName: "Moreau"},
		})
		if err != nil {
			t.Fatalf("creation failed: %v", err)
		}

		tableID := seedTable(t, store, testfixtures.WithTableCapacity(2))
		seating := application.NewSeatingService(store, store, store, testfixtures.NewIDGenerator("assignment").NextFunc(), testfixtures.NewClock(time.Time{}).NowFunc())
		if _, err := seating.AssignSeat(context.Background(), application.AssignSeatParams{
			Principal: adminPrincipal(),
			GuestID:   created.ID,
			TableID:   tableID,
		}); err != nil {
			t.Fatalf("assignment failed: %v", err)
		}

		if err := svc.DeleteGuest(context.Background(), adminPrincipal(), created.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		count, err := store.CountAssignmentsForTable(context.Background(), tableID)
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 0 {
			t.Fatalf("expected assignment to be removed with the guest, got %d", count)
		}
	})
}

func TestGuestService_ListGuests(t *testing.T) {
	t.Run("filters by search and status", func(t *testing.T) {
		svc, store, _ := newGuestHarness(t)
		seedGuest(t, store, testfixtures.WithGuestName("Anne", "Durand"))
		seedGuest(t, store, testfixtures.WithGuestName("Paul", "Martin"), testfixtures.WithGuestRSVPStatus("pending"))

		guests, err := svc.ListGuests(context.Background(), application.ListGuestsParams{
			Principal: adminPrincipal(),
			Search:    "durand",
		})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(guests) != 1 || guests[0].LastName != "Durand" {
			t.Fatalf("unexpected search result: %+v", guests)
		}

		guests, err = svc.ListGuests(context.Background(), application.ListGuestsParams{
			Principal:  adminPrincipal(),
			RSVPStatus: application.RSVPPending,
		})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(guests) != 1 || guests[0].LastName != "Martin" {
			t.Fatalf("unexpected status filter result: %+v", guests)
		}
	})
}

func TestGuestService_ResolveQRToken(t *testing.T) {
	t.Run("resolves exact tokens and rejects unknown ones", func(t *testing.T) {
		svc, store, _ := newGuestHarness(t)
		fixture := testfixtures.NewGuestFixture(testfixtures.WithGuestQRToken("WEDDING-resolve-1"))
		if err := store.CreateGuest(context.Background(), fixture.Persistence()); err != nil {
			t.Fatalf("failed to seed guest: %v", err)
		}

		guest, err := svc.ResolveQRToken(context.Background(), "WEDDING-resolve-1")
		if err != nil {
			t.Fatalf("resolution failed: %v", err)
		}
		if guest.ID != fixture.ID {
			t.Fatalf("resolved wrong guest: %s", guest.ID)
		}

		if _, err := svc.ResolveQRToken(context.Background(), "wedding-resolve-1"); !errors.Is(err, application.ErrInvalidToken) {
			t.Fatalf("expected exact match requirement, got %v", err)
		}
	})
}
