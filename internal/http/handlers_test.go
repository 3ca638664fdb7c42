package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/wedding-seating/internal/application"
	"github.com/example/wedding-seating/internal/testfixtures"
)

const testOperatorPassword = "soirée-2026"

// newTestRouter wires the full handler stack against in-memory repositories,
// the same topology the binary assembles at startup.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := testfixtures.NewMemoryStore()
	clock := testfixtures.NewClock(time.Time{})
	now := clock.NowFunc()

	hash, err := application.CreatePasswordHash(testOperatorPassword, application.DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("failed to hash operator password: %v", err)
	}

	guestService := application.NewGuestService(store, testfixtures.NewIDGenerator("guest").NextFunc(), "WEDDING", now)
	tableService := application.NewTableService(store, store, testfixtures.NewIDGenerator("table").NextFunc(), now)
	seatingService := application.NewSeatingService(store, store, store, testfixtures.NewIDGenerator("assignment").NextFunc(), now)
	checkInService := application.NewCheckInService(store, store, store, now)
	rsvpService := application.NewRSVPService(store, store, guestService, testfixtures.NewIDGenerator("code").NextFunc(), now)
	authService := application.NewAuthService(store, hash, testfixtures.NewIDGenerator("session").NextFunc(), now, time.Hour)

	return NewRouter(RouterConfig{
		Auth:           NewAuthHandler(authService, nil),
		Guests:         NewGuestHandler(guestService, nil),
		Tables:         NewTableHandler(tableService, nil),
		Seating:        NewSeatingHandler(seatingService, nil),
		CheckIn:        NewCheckInHandler(checkInService, nil),
		RSVP:           NewRSVPHandler(rsvpService, nil),
		Badges:         NewBadgeHandler(guestService, nil),
		RequireSession: RequireSession(authService, nil),
	})
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to decode response %q: %v", recorder.Body.String(), err)
	}
}

func login(t *testing.T, handler http.Handler) string {
	t.Helper()

	recorder := doJSON(t, handler, http.MethodPost, "/login", "", map[string]string{"password": testOperatorPassword})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("login failed with status %d: %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		Token string `json:"token"`
	}
	decodeBody(t, recorder, &response)
	if response.Token == "" {
		t.Fatal("login did not return a token")
	}
	return response.Token
}

func TestRouterPublicSurface(t *testing.T) {
	handler := newTestRouter(t)

	t.Run("health endpoint needs no session", func(t *testing.T) {
		recorder := doJSON(t, handler, http.MethodGet, "/healthz", "", nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
	})

	t.Run("operator routes reject anonymous requests", func(t *testing.T) {
		for _, path := range []string{"/guests", "/tables", "/views/tables", "/access-codes"} {
			recorder := doJSON(t, handler, http.MethodGet, path, "", nil)
			if recorder.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401 for %s, got %d", path, recorder.Code)
			}
		}
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		recorder := doJSON(t, handler, http.MethodPost, "/login", "", map[string]string{"password": "wrong"})
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
		var response struct {
			ErrorCode string `json:"error_code"`
		}
		decodeBody(t, recorder, &response)
		if response.ErrorCode != "AUTH_INVALID_CREDENTIALS" {
			t.Fatalf("unexpected error code %q", response.ErrorCode)
		}
	})
}

func TestOperatorFlow(t *testing.T) {
	handler := newTestRouter(t)
	token := login(t, handler)

	// Catalog setup.
	recorder := doJSON(t, handler, http.MethodPost, "/tables", token, map[string]any{
		"table_number": 1,
		"capacity":     2,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("table creation failed with status %d: %s", recorder.Code, recorder.Body.String())
	}
	var tableResp struct {
		Table struct {
			ID string `json:"id"`
		} `json:"table"`
	}
	decodeBody(t, recorder, &tableResp)

	recorder = doJSON(t, handler, http.MethodPost, "/guests", token, map[string]any{
		"first_name": "Claire",
		"last_name":  "Moreau",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("guest creation failed with status %d: %s", recorder.Code, recorder.Body.String())
	}
	var guestResp struct {
		Guest struct {
			ID         string `json:"id"`
			QRToken    string `json:"qr_token"`
			RSVPStatus string `json:"rsvp_status"`
		} `json:"guest"`
	}
	decodeBody(t, recorder, &guestResp)
	if guestResp.Guest.RSVPStatus != "confirmed" {
		t.Fatalf("expected admin-created guest to be confirmed, got %q", guestResp.Guest.RSVPStatus)
	}

	// First-fit assignment lands on seat 1.
	recorder = doJSON(t, handler, http.MethodPost, "/assignments", token, map[string]any{
		"guest_id": guestResp.Guest.ID,
		"table_id": tableResp.Table.ID,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("assignment failed with status %d: %s", recorder.Code, recorder.Body.String())
	}
	var assignResp struct {
		Assignment struct {
			SeatNumber int `json:"seat_number"`
		} `json:"assignment"`
	}
	decodeBody(t, recorder, &assignResp)
	if assignResp.Assignment.SeatNumber != 1 {
		t.Fatalf("expected seat 1, got %d", assignResp.Assignment.SeatNumber)
	}

	// Scanning the printed badge checks the guest in and echoes the seat.
	recorder = doJSON(t, handler, http.MethodPost, "/scans", token, map[string]string{
		"token": guestResp.Guest.QRToken,
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("scan failed with status %d: %s", recorder.Code, recorder.Body.String())
	}
	var scanResp struct {
		Guest struct {
			CheckedIn bool `json:"checked_in"`
		} `json:"guest"`
		TableNumber      *int `json:"table_number"`
		SeatNumber       *int `json:"seat_number"`
		AlreadyCheckedIn bool `json:"already_checked_in"`
	}
	decodeBody(t, recorder, &scanResp)
	if !scanResp.Guest.CheckedIn || scanResp.AlreadyCheckedIn {
		t.Fatalf("unexpected scan state: %+v", scanResp)
	}
	if scanResp.TableNumber == nil || *scanResp.TableNumber != 1 || scanResp.SeatNumber == nil || *scanResp.SeatNumber != 1 {
		t.Fatalf("unexpected seat summary: %+v", scanResp)
	}

	// The occupancy view reflects the assignment.
	recorder = doJSON(t, handler, http.MethodGet, "/views/tables", token, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("occupancy view failed with status %d: %s", recorder.Code, recorder.Body.String())
	}
	var viewResp struct {
		Tables []struct {
			Occupied  int `json:"occupied"`
			Available int `json:"available"`
		} `json:"tables"`
	}
	decodeBody(t, recorder, &viewResp)
	if len(viewResp.Tables) != 1 || viewResp.Tables[0].Occupied != 1 || viewResp.Tables[0].Available != 1 {
		t.Fatalf("unexpected occupancy view: %+v", viewResp.Tables)
	}

	// The badge endpoint renders a PNG for the guest's QR token.
	recorder = doJSON(t, handler, http.MethodGet, "/guests/"+guestResp.Guest.ID+"/badge", token, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("badge rendering failed with status %d: %s", recorder.Code, recorder.Body.String())
	}
	if contentType := recorder.Header().Get("Content-Type"); contentType != "image/png" {
		t.Fatalf("expected image/png, got %q", contentType)
	}
}

func TestRSVPFlow(t *testing.T) {
	handler := newTestRouter(t)
	token := login(t, handler)

	recorder := doJSON(t, handler, http.MethodPost, "/access-codes", token, map[string]string{"code": "MARIAGE2026"})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("access code creation failed with status %d: %s", recorder.Code, recorder.Body.String())
	}

	// Public self-registration behind the access code.
	recorder = doJSON(t, handler, http.MethodPost, "/rsvp/register", "", map[string]string{
		"access_code": "MARIAGE2026",
		"first_name":  "Sophie",
		"last_name":   "Bernard",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("registration failed with status %d: %s", recorder.Code, recorder.Body.String())
	}
	var registerResp struct {
		Invitation struct {
			InvitationCode string `json:"invitation_code"`
			RSVPStatus     string `json:"rsvp_status"`
		} `json:"invitation"`
	}
	decodeBody(t, recorder, &registerResp)
	if registerResp.Invitation.RSVPStatus != "pending" {
		t.Fatalf("expected pending status, got %q", registerResp.Invitation.RSVPStatus)
	}

	recorder = doJSON(t, handler, http.MethodPost, "/rsvp/register", "", map[string]string{
		"access_code": "WRONG",
		"first_name":  "Paul",
		"last_name":   "Martin",
	})
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for a wrong access code, got %d", recorder.Code)
	}

	// Lookup greets the guest, confirmation flips the status.
	code := registerResp.Invitation.InvitationCode
	recorder = doJSON(t, handler, http.MethodGet, "/rsvp/"+code, "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("lookup failed with status %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = doJSON(t, handler, http.MethodPost, "/rsvp/"+code, "", map[string]any{
		"attending":  true,
		"party_size": 2,
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("confirmation failed with status %d: %s", recorder.Code, recorder.Body.String())
	}
	var confirmResp struct {
		Invitation struct {
			RSVPStatus string `json:"rsvp_status"`
			PartySize  int    `json:"party_size"`
		} `json:"invitation"`
	}
	decodeBody(t, recorder, &confirmResp)
	if confirmResp.Invitation.RSVPStatus != "confirmed" || confirmResp.Invitation.PartySize != 2 {
		t.Fatalf("unexpected confirmation result: %+v", confirmResp.Invitation)
	}

	// An unknown invitation code gets its own error, not the access code one.
	recorder = doJSON(t, handler, http.MethodGet, "/rsvp/WEDDING-UNKNOWN", "", nil)
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for an unknown invitation code, got %d", recorder.Code)
	}
	var invitationErr struct {
		ErrorCode string `json:"error_code"`
	}
	decodeBody(t, recorder, &invitationErr)
	if invitationErr.ErrorCode != "INVALID_INVITATION_CODE" {
		t.Fatalf("expected INVALID_INVITATION_CODE, got %q", invitationErr.ErrorCode)
	}
}

func TestValidationErrorsAreLocalized(t *testing.T) {
	handler := newTestRouter(t)
	token := login(t, handler)

	recorder := doJSON(t, handler, http.MethodPost, "/guests", token, map[string]string{
		"first_name": "",
		"last_name":  "",
	})
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		Errors map[string]string `json:"errors"`
	}
	decodeBody(t, recorder, &response)
	if response.Errors["first_name"] != "le prénom est requis." {
		t.Fatalf("unexpected localized message: %q", response.Errors["first_name"])
	}
	if response.Errors["last_name"] != "le nom est requis." {
		t.Fatalf("unexpected localized message: %q", response.Errors["last_name"])
	}
}

func TestSeatConflictsSurfaceAsConflicts(t *testing.T) {
	handler := newTestRouter(t)
	token := login(t, handler)

	recorder := doJSON(t, handler, http.MethodPost, "/tables", token, map[string]any{
		"table_number": 1,
		"capacity":     1,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("table creation failed: %s", recorder.Body.String())
	}
	var tableResp struct {
		Table struct {
			ID string `json:"id"`
		} `json:"table"`
	}
	decodeBody(t, recorder, &tableResp)

	guestIDs := make([]string, 0, 2)
	for _, name := range []string{"Claire", "Sophie"} {
		recorder = doJSON(t, handler, http.MethodPost, "/guests", token, map[string]string{
			"first_name": name,
			"last_name":  "Moreau",
		})
		if recorder.Code != http.StatusCreated {
			t.Fatalf("guest creation failed: %s", recorder.Body.String())
		}
		var guestResp struct {
			Guest struct {
				ID string `json:"id"`
			} `json:"guest"`
		}
		decodeBody(t, recorder, &guestResp)
		guestIDs = append(guestIDs, guestResp.Guest.ID)
	}

	recorder = doJSON(t, handler, http.MethodPost, "/assignments", token, map[string]any{
		"guest_id": guestIDs[0],
		"table_id": tableResp.Table.ID,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("first assignment failed: %s", recorder.Body.String())
	}

	recorder = doJSON(t, handler, http.MethodPost, "/assignments", token, map[string]any{
		"guest_id": guestIDs[1],
		"table_id": tableResp.Table.ID,
	})
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a full table, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var response struct {
		ErrorCode string `json:"error_code"`
	}
	decodeBody(t, recorder, &response)
	if response.ErrorCode != "TABLE_FULL" {
		t.Fatalf("unexpected error code %q", response.ErrorCode)
	}
}
