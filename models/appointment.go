// File: models/appointment.go
package models

import "time"

// Appointment modes accepted by the scheduling service.
const (
	AppointmentModeCreate = "create"
	AppointmentModeUpdate = "update"
)

// Appointment is a persisted booking record.
type Appointment struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone" json:"phone"`
	Timing    string    `bson:"timing" json:"timing"`
	Status    string    `bson:"status" json:"status"` // "confirmed" or "rescheduled"
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
