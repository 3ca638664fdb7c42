package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Auth    *AuthHandler
	Guests  *GuestHandler
	Tables  *TableHandler
	Seating *SeatingHandler
	CheckIn *CheckInHandler
	RSVP    *RSVPHandler
	Badges  *BadgeHandler

	// Metrics serves the Prometheus scrape endpoint when set.
	Metrics http.Handler

	// RequireSession wraps every operator route; public routes (login,
	// RSVP, health, metrics) bypass it.
	RequireSession func(http.Handler) http.Handler

	// Middleware wraps the whole router, outermost first.
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	protect := func(h http.HandlerFunc) http.Handler {
		if cfg.RequireSession == nil {
			return h
		}
		return cfg.RequireSession(h)
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	if cfg.Auth != nil {
		mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.DeleteCurrentSession(w, r)
		})
	}

	if cfg.RSVP != nil {
		mux.HandleFunc("/rsvp/register", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.RSVP.Register(w, r)
		})
		mux.HandleFunc("/rsvp/", func(w http.ResponseWriter, r *http.Request) {
			code := strings.TrimPrefix(r.URL.Path, "/rsvp/")
			if code == "" || strings.Contains(code, "/") {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithRSVPCode(r.Context(), code)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.RSVP.Lookup(w, r)
			case http.MethodPost:
				cfg.RSVP.Confirm(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})

		mux.Handle("/access-codes", protect(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.RSVP.ListAccessCodes(w, r)
			case http.MethodPost:
				cfg.RSVP.CreateAccessCode(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
	}

	if cfg.Guests != nil {
		mux.Handle("/guests", protect(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Guests.List(w, r)
			case http.MethodPost:
				cfg.Guests.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/guests/", protect(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/guests/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}

			if id, found := strings.CutSuffix(rest, "/badge"); found && cfg.Badges != nil {
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				ctx := ContextWithGuestID(r.Context(), id)
				cfg.Badges.Render(w, r.WithContext(ctx))
				return
			}

			if strings.Contains(rest, "/") {
				http.NotFound(w, r)
				return
			}

			ctx := ContextWithGuestID(r.Context(), rest)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Guests.Get(w, r)
			case http.MethodPut:
				cfg.Guests.Update(w, r)
			case http.MethodDelete:
				cfg.Guests.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Tables != nil {
		mux.Handle("/tables", protect(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Tables.List(w, r)
			case http.MethodPost:
				cfg.Tables.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/tables/", protect(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/tables/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}

			if id, found := strings.CutSuffix(rest, "/next-seat"); found && cfg.Seating != nil {
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				ctx := ContextWithTableID(r.Context(), id)
				cfg.Seating.NextSeat(w, r.WithContext(ctx))
				return
			}

			if strings.Contains(rest, "/") {
				http.NotFound(w, r)
				return
			}

			ctx := ContextWithTableID(r.Context(), rest)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Tables.Get(w, r)
			case http.MethodPut:
				cfg.Tables.Update(w, r)
			case http.MethodDelete:
				cfg.Tables.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Seating != nil {
		mux.Handle("/assignments", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Seating.Assign(w, r)
		}))
		mux.Handle("/assignments/", protect(func(w http.ResponseWriter, r *http.Request) {
			guestID := strings.TrimPrefix(r.URL.Path, "/assignments/")
			if guestID == "" || strings.Contains(guestID, "/") {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithGuestID(r.Context(), guestID)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Seating.GetForGuest(w, r)
			case http.MethodDelete:
				cfg.Seating.Remove(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		}))
		mux.Handle("/moves", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Seating.Move(w, r)
		}))
		mux.Handle("/views/tables", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Seating.TableStatuses(w, r)
		}))
		mux.Handle("/views/guests", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Seating.GuestStatuses(w, r)
		}))
	}

	if cfg.CheckIn != nil {
		mux.Handle("/checkins/", protect(func(w http.ResponseWriter, r *http.Request) {
			guestID := strings.TrimPrefix(r.URL.Path, "/checkins/")
			if guestID == "" || strings.Contains(guestID, "/") {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithGuestID(r.Context(), guestID)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodPost:
				cfg.CheckIn.CheckIn(w, r)
			case http.MethodDelete:
				cfg.CheckIn.CheckOut(w, r)
			default:
				methodNotAllowed(w, http.MethodPost, http.MethodDelete)
			}
		}))
		mux.Handle("/scans", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.CheckIn.Scan(w, r)
		}))
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
