package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the seating
// service.
type Config struct {
	HTTPPort          int
	SQLiteDSN         string
	AdminPasswordHash string
	SessionTTL        time.Duration
	QRCodePrefix      string
}

// Load reads an optional .env file, then parses configuration values from
// the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values and reporting localized error messages for missing entries.
func Load() (Config, error) {
	// A missing .env file is not an error; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:     8080,
		SQLiteDSN:    "file:seating.db?_foreign_keys=on",
		SessionTTL:   24 * time.Hour,
		QRCodePrefix: "WEDDING",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("SEATING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "SEATING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("SEATING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if hash := strings.TrimSpace(os.Getenv("SEATING_ADMIN_PASSWORD_HASH")); hash == "" {
		missing = append(missing, "SEATING_ADMIN_PASSWORD_HASH")
	} else {
		cfg.AdminPasswordHash = hash
	}

	if ttlValue := strings.TrimSpace(os.Getenv("SEATING_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "SEATING_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if prefix := strings.TrimSpace(os.Getenv("SEATING_QR_PREFIX")); prefix != "" {
		cfg.QRCodePrefix = prefix
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("variables d'environnement requises manquantes: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("valeurs de variables d'environnement invalides: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
