// File: services/notification/interface.go
package notification

import (
	"context"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"
)

// NotificationService sends booking-related emails. Delivery is best effort;
// callers log failures and move on.
type NotificationService interface {
	// SendBookingConfirmation mails the customer and the internal inbox
	// about a newly booked appointment.
	SendBookingConfirmation(ctx context.Context, appt models.Appointment) error

	// SendBookingUpdate mails both parties about a rescheduled appointment.
	SendBookingUpdate(ctx context.Context, appt models.Appointment, oldTiming string) error
}
