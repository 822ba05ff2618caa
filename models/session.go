// File: models/session.go
package models

import "time"

// Booking form field names. Slots never hold any key outside this set.
const (
	SlotName   = "name"
	SlotEmail  = "email"
	SlotPhone  = "phone"
	SlotTiming = "timing"
)

// SlotFields returns the booking field names in collection order.
func SlotFields() []string {
	return []string{SlotName, SlotEmail, SlotPhone, SlotTiming}
}

// ChatTurn is one completed user/bot exchange.
type ChatTurn struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// ContactDetails is the identity portion of a completed booking, retained
// after the slots are reset so follow-up questions can be answered without
// re-collecting data.
type ContactDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Session is the per-conversation state. It lives in memory for the process
// lifetime; mutation is serialized per session by the assistant service.
type Session struct {
	ID                    string
	History               []ChatTurn
	Slots                 map[string]string
	ConfirmedContact      *ContactDetails
	LastAppointmentTiming string
	CreatedAt             time.Time
	LastActiveAt          time.Time
}

// LastBotMessage returns the bot side of the most recent turn, or "".
func (s *Session) LastBotMessage() string {
	if len(s.History) == 0 {
		return ""
	}
	return s.History[len(s.History)-1].Bot
}

// HasSlotData reports whether any booking field has been collected.
func (s *Session) HasSlotData() bool {
	for _, f := range SlotFields() {
		if s.Slots[f] != "" {
			return true
		}
	}
	return false
}

// SlotsComplete reports whether all four booking fields are populated.
func (s *Session) SlotsComplete() bool {
	for _, f := range SlotFields() {
		if s.Slots[f] == "" {
			return false
		}
	}
	return true
}

// SessionSummary is the admin-facing view of one session.
type SessionSummary struct {
	ID           string    `json:"id"`
	Turns        int       `json:"turns"`
	SlotsFilled  int       `json:"slotsFilled"`
	HasConfirmed bool      `json:"hasConfirmedBooking"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
}
