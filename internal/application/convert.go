package application

import (
	"time"

	"github.com/example/wedding-seating/internal/persistence"
)

func toApplicationGuest(model persistence.Guest) Guest {
	return Guest{
		ID:             model.ID,
		FirstName:      model.FirstName,
		LastName:       model.LastName,
		Email:          cloneString(model.Email),
		Phone:          cloneString(model.Phone),
		InvitationCode: model.InvitationCode,
		GuestCode:      model.GuestCode,
		QRToken:        model.QRToken,
		RSVPStatus:     RSVPStatus(model.RSVPStatus),
		PartySize:      model.PartySize,
		Dietary:        cloneString(model.Dietary),
		Notes:          cloneString(model.Notes),
		CheckedIn:      model.CheckedIn,
		CheckedInAt:    cloneTime(model.CheckedInAt),
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func toPersistenceGuest(guest Guest) persistence.Guest {
	return persistence.Guest{
		ID:             guest.ID,
		FirstName:      guest.FirstName,
		LastName:       guest.LastName,
		Email:          cloneString(guest.Email),
		Phone:          cloneString(guest.Phone),
		InvitationCode: guest.InvitationCode,
		GuestCode:      guest.GuestCode,
		QRToken:        guest.QRToken,
		RSVPStatus:     string(guest.RSVPStatus),
		PartySize:      guest.PartySize,
		Dietary:        cloneString(guest.Dietary),
		Notes:          cloneString(guest.Notes),
		CheckedIn:      guest.CheckedIn,
		CheckedInAt:    cloneTime(guest.CheckedInAt),
		CreatedAt:      guest.CreatedAt,
		UpdatedAt:      guest.UpdatedAt,
	}
}

func toApplicationTable(model persistence.Table) Table {
	return Table{
		ID:        model.ID,
		Number:    model.Number,
		Name:      cloneString(model.Name),
		Capacity:  model.Capacity,
		VIP:       model.VIP,
		Color:     cloneString(model.Color),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceTable(table Table) persistence.Table {
	return persistence.Table{
		ID:        table.ID,
		Number:    table.Number,
		Name:      cloneString(table.Name),
		Capacity:  table.Capacity,
		VIP:       table.VIP,
		Color:     cloneString(table.Color),
		CreatedAt: table.CreatedAt,
		UpdatedAt: table.UpdatedAt,
	}
}

func toApplicationAssignment(model persistence.SeatAssignment) SeatAssignment {
	return SeatAssignment{
		ID:         model.ID,
		GuestID:    model.GuestID,
		TableID:    model.TableID,
		SeatNumber: model.SeatNumber,
		CreatedAt:  model.CreatedAt,
	}
}

func toApplicationAccessCode(model persistence.AccessCode) AccessCode {
	return AccessCode{
		ID:        model.ID,
		Code:      model.Code,
		Label:     cloneString(model.Label),
		Active:    model.Active,
		CreatedAt: model.CreatedAt,
	}
}

func toApplicationSession(model persistence.Session) Session {
	return Session{
		ID:        model.ID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
