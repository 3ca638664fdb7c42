package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/wedding-seating/internal/application"
	"github.com/example/wedding-seating/internal/config"
	httptransport "github.com/example/wedding-seating/internal/http"
	"github.com/example/wedding-seating/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := application.NewIDGenerator()
	now := time.Now

	guestRepo := sqlite.NewGuestRepository(storage)
	tableRepo := sqlite.NewTableRepository(storage)
	assignmentRepo := sqlite.NewAssignmentRepository(storage)
	accessCodeRepo := sqlite.NewAccessCodeRepository(storage)
	sessionRepo := sqlite.NewSessionRepository(storage)

	guestService := application.NewGuestServiceWithLogger(guestRepo, idGenerator, cfg.QRCodePrefix, now, logger)
	tableService := application.NewTableServiceWithLogger(tableRepo, assignmentRepo, idGenerator, now, logger)
	seatingService := application.NewSeatingServiceWithLogger(guestRepo, tableRepo, assignmentRepo, idGenerator, now, logger)
	checkInService := application.NewCheckInServiceWithLogger(guestRepo, tableRepo, assignmentRepo, now, logger)
	rsvpService := application.NewRSVPServiceWithLogger(guestRepo, accessCodeRepo, guestService, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(sessionRepo, cfg.AdminPasswordHash, nil, idGenerator, nil, now, cfg.SessionTTL, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:           httptransport.NewAuthHandler(authService, logger),
		Guests:         httptransport.NewGuestHandler(guestService, logger),
		Tables:         httptransport.NewTableHandler(tableService, logger),
		Seating:        httptransport.NewSeatingHandler(seatingService, logger),
		CheckIn:        httptransport.NewCheckInHandler(checkInService, logger),
		RSVP:           httptransport.NewRSVPHandler(rsvpService, logger),
		Badges:         httptransport.NewBadgeHandler(guestService, logger),
		Metrics:        promhttp.Handler(),
		RequireSession: httptransport.RequireSession(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RequestMetrics(),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("seating API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
