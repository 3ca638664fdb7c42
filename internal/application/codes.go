package application

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	guestCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	guestCodeLength   = 8
)

// GenerateGuestCode returns a short uppercase alphanumeric code used as the
// manual-entry fallback key on badges.
func GenerateGuestCode() string {
	buf := make([]byte, guestCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	for i, b := range buf {
		buf[i] = guestCodeAlphabet[int(b)%len(guestCodeAlphabet)]
	}
	return string(buf)
}

// NewQRTokenGenerator returns a generator minting durable opaque QR tokens.
// A token is bound to the guest identity at creation and never regenerated
// on seat moves, so printed badges stay valid for the whole event.
func NewQRTokenGenerator(prefix string) func() string {
	return func() string {
		return prefix + "-" + uuid.NewString()
	}
}

// NewIDGenerator returns a generator for record identifiers.
func NewIDGenerator() func() string {
	return uuid.NewString
}
