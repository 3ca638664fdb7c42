// Package testfixtures provides deterministic clocks, identifier generators,
// fixture builders and in-memory repositories shared by the test suites.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/wedding-seating/internal/persistence"
)

var (
	guestCounter uint64
	tableCounter uint64
)

var referenceTime = time.Date(2026, time.June, 20, 14, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Guest fixtures -----------------------------

// GuestFixture represents a deterministic guest record that can be
// materialised for application or persistence tests.
type GuestFixture struct {
	ID             string
	FirstName      string
	LastName       string
	InvitationCode string
	GuestCode      string
	QRToken        string
	RSVPStatus     string
	PartySize      int
	CheckedIn      bool
	CheckedInAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// GuestOption configures the generated guest fixture.
type GuestOption func(*GuestFixture)

// NewGuestFixture returns a deterministic guest fixture with optional
// overrides.
func NewGuestFixture(opts ...GuestOption) GuestFixture {
	idx := atomic.AddUint64(&guestCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := GuestFixture{
		ID:             fmt.Sprintf("guest-%03d", idx),
		FirstName:      fmt.Sprintf("Prénom%03d", idx),
		LastName:       fmt.Sprintf("Nom%03d", idx),
		InvitationCode: fmt.Sprintf("WEDDING-INV%03d", idx),
		GuestCode:      fmt.Sprintf("CODE%04d", idx),
		QRToken:        fmt.Sprintf("WEDDING-token-%03d", idx),
		RSVPStatus:     "confirmed",
		PartySize:      1,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithGuestID overrides the generated guest ID.
func WithGuestID(id string) GuestOption {
	return func(f *GuestFixture) {
		f.ID = id
	}
}

// WithGuestName overrides the generated names.
func WithGuestName(first, last string) GuestOption {
	return func(f *GuestFixture) {
		f.FirstName = first
		f.LastName = last
	}
}

// WithGuestRSVPStatus overrides the generated RSVP status.
func WithGuestRSVPStatus(status string) GuestOption {
	return func(f *GuestFixture) {
		f.RSVPStatus = status
	}
}

// WithGuestCheckedIn marks the fixture as present at the given time.
func WithGuestCheckedIn(at time.Time) GuestOption {
	return func(f *GuestFixture) {
		f.CheckedIn = true
		f.CheckedInAt = &at
	}
}

// WithGuestQRToken overrides the generated QR token.
func WithGuestQRToken(token string) GuestOption {
	return func(f *GuestFixture) {
		f.QRToken = token
	}
}

// Persistence returns the fixture as a persistence.Guest value.
func (f GuestFixture) Persistence() persistence.Guest {
	return persistence.Guest{
		ID:             f.ID,
		FirstName:      f.FirstName,
		LastName:       f.LastName,
		InvitationCode: f.InvitationCode,
		GuestCode:      f.GuestCode,
		QRToken:        f.QRToken,
		RSVPStatus:     f.RSVPStatus,
		PartySize:      f.PartySize,
		CheckedIn:      f.CheckedIn,
		CheckedInAt:    f.CheckedInAt,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// ----------------------------- Table fixtures -----------------------------

// TableFixture represents a deterministic table record.
type TableFixture struct {
	ID        string
	Number    int
	Capacity  int
	VIP       bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableOption configures the generated table fixture.
type TableOption func(*TableFixture)

// NewTableFixture returns a deterministic table fixture with optional
// overrides.
func NewTableFixture(opts ...TableOption) TableFixture {
	idx := atomic.AddUint64(&tableCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := TableFixture{
		ID:        fmt.Sprintf("table-%03d", idx),
		Number:    int(idx),
		Capacity:  8,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTableID overrides the generated table ID.
func WithTableID(id string) TableOption {
	return func(f *TableFixture) {
		f.ID = id
	}
}

// WithTableNumber overrides the generated table number.
func WithTableNumber(number int) TableOption {
	return func(f *TableFixture) {
		f.Number = number
	}
}

// WithTableCapacity overrides the generated capacity.
func WithTableCapacity(capacity int) TableOption {
	return func(f *TableFixture) {
		f.Capacity = capacity
	}
}

// WithTableVIP marks the fixture as a VIP table.
func WithTableVIP() TableOption {
	return func(f *TableFixture) {
		f.VIP = true
	}
}

// Persistence returns the fixture as a persistence.Table value.
func (f TableFixture) Persistence() persistence.Table {
	return persistence.Table{
		ID:        f.ID,
		Number:    f.Number,
		Capacity:  f.Capacity,
		VIP:       f.VIP,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}
