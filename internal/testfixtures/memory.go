package testfixtures

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/wedding-seating/internal/persistence"
)

// MemoryStore is an in-memory implementation of every persistence repository
// interface, mirroring the storage semantics the SQLite layer enforces with
// unique indexes: one guest per seat, one seat per guest, unique codes.
type MemoryStore struct {
	mu          sync.Mutex
	guests      map[string]persistence.Guest
	tables      map[string]persistence.Table
	assignments map[string]persistence.SeatAssignment // keyed by guest ID
	accessCodes map[string]persistence.AccessCode     // keyed by lowercase code
	sessions    map[string]persistence.Session        // keyed by token
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		guests:      make(map[string]persistence.Guest),
		tables:      make(map[string]persistence.Table),
		assignments: make(map[string]persistence.SeatAssignment),
		accessCodes: make(map[string]persistence.AccessCode),
		sessions:    make(map[string]persistence.Session),
	}
}

// ----------------------------- guests -----------------------------

func (s *MemoryStore) CreateGuest(_ context.Context, guest persistence.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.guests[guest.ID]; ok {
		return persistence.ErrDuplicate
	}
	for _, existing := range s.guests {
		if strings.EqualFold(existing.InvitationCode, guest.InvitationCode) ||
			strings.EqualFold(existing.GuestCode, guest.GuestCode) ||
			existing.QRToken == guest.QRToken {
			return persistence.ErrDuplicate
		}
	}
	s.guests[guest.ID] = guest
	return nil
}

func (s *MemoryStore) UpdateGuest(_ context.Context, guest persistence.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.guests[guest.ID]; !ok {
		return persistence.ErrNotFound
	}
	for id, existing := range s.guests {
		if id == guest.ID {
			continue
		}
		if strings.EqualFold(existing.InvitationCode, guest.InvitationCode) {
			return persistence.ErrDuplicate
		}
	}
	s.guests[guest.ID] = guest
	return nil
}

func (s *MemoryStore) GetGuest(_ context.Context, id string) (persistence.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guest, ok := s.guests[id]
	if !ok {
		return persistence.Guest{}, persistence.ErrNotFound
	}
	return guest, nil
}

func (s *MemoryStore) GetGuestByInvitationCode(_ context.Context, code string) (persistence.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, guest := range s.guests {
		if strings.EqualFold(guest.InvitationCode, code) {
			return guest, nil
		}
	}
	return persistence.Guest{}, persistence.ErrNotFound
}

func (s *MemoryStore) GetGuestByGuestCode(_ context.Context, code string) (persistence.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, guest := range s.guests {
		if strings.EqualFold(guest.GuestCode, code) {
			return guest, nil
		}
	}
	return persistence.Guest{}, persistence.ErrNotFound
}

func (s *MemoryStore) GetGuestByQRToken(_ context.Context, token string) (persistence.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, guest := range s.guests {
		if guest.QRToken == token {
			return guest, nil
		}
	}
	return persistence.Guest{}, persistence.ErrNotFound
}

func (s *MemoryStore) ListGuests(_ context.Context, filter persistence.GuestFilter) ([]persistence.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]persistence.Guest, 0, len(s.guests))
	for _, guest := range s.guests {
		if filter.RSVPStatus != "" && guest.RSVPStatus != filter.RSVPStatus {
			continue
		}
		if filter.Search != "" && !guestMatches(guest, filter.Search) {
			continue
		}
		out = append(out, guest)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func guestMatches(guest persistence.Guest, search string) bool {
	needle := strings.ToLower(search)
	haystacks := []string{guest.FirstName, guest.LastName, guest.InvitationCode, guest.GuestCode}
	if guest.Email != nil {
		haystacks = append(haystacks, *guest.Email)
	}
	for _, value := range haystacks {
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) DeleteGuest(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.guests[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.assignments, id)
	delete(s.guests, id)
	return nil
}

func (s *MemoryStore) SetPresence(_ context.Context, id string, checkedIn bool, at *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	guest, ok := s.guests[id]
	if !ok {
		return persistence.ErrNotFound
	}
	guest.CheckedIn = checkedIn
	guest.CheckedInAt = at
	s.guests[id] = guest
	return nil
}

// ----------------------------- tables -----------------------------

func (s *MemoryStore) CreateTable(_ context.Context, table persistence.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[table.ID]; ok {
		return persistence.ErrDuplicate
	}
	for _, existing := range s.tables {
		if existing.Number == table.Number {
			return persistence.ErrDuplicate
		}
	}
	s.tables[table.ID] = table
	return nil
}

func (s *MemoryStore) UpdateTable(_ context.Context, table persistence.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[table.ID]; !ok {
		return persistence.ErrNotFound
	}
	for id, existing := range s.tables {
		if id != table.ID && existing.Number == table.Number {
			return persistence.ErrDuplicate
		}
	}
	s.tables[table.ID] = table
	return nil
}

func (s *MemoryStore) GetTable(_ context.Context, id string) (persistence.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[id]
	if !ok {
		return persistence.Table{}, persistence.ErrNotFound
	}
	return table, nil
}

func (s *MemoryStore) ListTables(_ context.Context) ([]persistence.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]persistence.Table, 0, len(s.tables))
	for _, table := range s.tables {
		out = append(out, table)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *MemoryStore) DeleteTable(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, assignment := range s.assignments {
		if assignment.TableID == id {
			return persistence.ErrConstraintViolation
		}
	}
	delete(s.tables, id)
	return nil
}

// ----------------------------- assignments -----------------------------

func (s *MemoryStore) ReplaceAssignment(_ context.Context, assignment persistence.SeatAssignment, capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	occupied := 0
	for guestID, existing := range s.assignments {
		if guestID == assignment.GuestID {
			continue
		}
		if existing.TableID == assignment.TableID {
			occupied++
			if existing.SeatNumber == assignment.SeatNumber {
				return persistence.ErrSeatTaken
			}
		}
	}
	if occupied >= capacity {
		return persistence.ErrTableFull
	}

	s.assignments[assignment.GuestID] = assignment
	return nil
}

func (s *MemoryStore) GetAssignmentForGuest(_ context.Context, guestID string) (persistence.SeatAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	assignment, ok := s.assignments[guestID]
	if !ok {
		return persistence.SeatAssignment{}, persistence.ErrNotFound
	}
	return assignment, nil
}

func (s *MemoryStore) ListAssignmentsForTable(_ context.Context, tableID string) ([]persistence.SeatAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]persistence.SeatAssignment, 0)
	for _, assignment := range s.assignments {
		if assignment.TableID == tableID {
			out = append(out, assignment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (s *MemoryStore) DeleteAssignmentForGuest(_ context.Context, guestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.assignments, guestID)
	return nil
}

func (s *MemoryStore) CountAssignmentsForTable(_ context.Context, tableID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, assignment := range s.assignments {
		if assignment.TableID == tableID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) ListTableOccupancies(_ context.Context) ([]persistence.TableOccupancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]persistence.TableOccupancy, 0, len(s.tables))
	for _, table := range s.tables {
		occupied := 0
		for _, assignment := range s.assignments {
			if assignment.TableID == table.ID {
				occupied++
			}
		}
		out = append(out, persistence.TableOccupancy{Table: table, Occupied: occupied})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Table.Number < out[j].Table.Number })
	return out, nil
}

func (s *MemoryStore) ListGuestSeats(_ context.Context) ([]persistence.GuestSeat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]persistence.GuestSeat, 0, len(s.guests))
	for _, guest := range s.guests {
		seat := persistence.GuestSeat{Guest: guest}
		if assignment, ok := s.assignments[guest.ID]; ok {
			tableID := assignment.TableID
			seatNumber := assignment.SeatNumber
			seat.TableID = &tableID
			seat.SeatNumber = &seatNumber
			if table, ok := s.tables[assignment.TableID]; ok {
				number := table.Number
				seat.TableNumber = &number
			}
		}
		out = append(out, seat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Guest.LastName != out[j].Guest.LastName {
			return out[i].Guest.LastName < out[j].Guest.LastName
		}
		return out[i].Guest.FirstName < out[j].Guest.FirstName
	})
	return out, nil
}

// ----------------------------- access codes -----------------------------

func (s *MemoryStore) GetAccessCode(_ context.Context, code string) (persistence.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.accessCodes[strings.ToLower(code)]
	if !ok {
		return persistence.AccessCode{}, persistence.ErrNotFound
	}
	return stored, nil
}

func (s *MemoryStore) CreateAccessCode(_ context.Context, code persistence.AccessCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(code.Code)
	if _, ok := s.accessCodes[key]; ok {
		return persistence.ErrDuplicate
	}
	s.accessCodes[key] = code
	return nil
}

func (s *MemoryStore) ListAccessCodes(_ context.Context) ([]persistence.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]persistence.AccessCode, 0, len(s.accessCodes))
	for _, code := range s.accessCodes {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// ----------------------------- sessions -----------------------------

func (s *MemoryStore) CreateSession(_ context.Context, session persistence.Session) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.Token]; ok {
		return persistence.Session{}, persistence.ErrDuplicate
	}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *MemoryStore) GetSession(_ context.Context, token string) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (s *MemoryStore) RevokeSession(_ context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok || session.RevokedAt != nil {
		return persistence.Session{}, persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	session.UpdatedAt = revokedAt
	s.sessions[token] = session
	return session, nil
}

func (s *MemoryStore) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}
