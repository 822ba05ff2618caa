// File: services/booking/service.go
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/database/repository/appointment"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/services/notification"

	"go.uber.org/zap"
)

// notifyTimeout bounds the background email delivery per booking.
const notifyTimeout = 30 * time.Second

// DefaultSchedulingService persists appointments and fires notification
// emails. Persistence failure is the caller's problem; notification failure
// is not.
type DefaultSchedulingService struct {
	Repo     appointmentRepo.AppointmentRepository
	Notifier notification.NotificationService
	Logger   *zap.Logger
}

// NewSchedulingService wires the booking service.
func NewSchedulingService(repo appointmentRepo.AppointmentRepository, notifier notification.NotificationService, logger *zap.Logger) *DefaultSchedulingService {
	return &DefaultSchedulingService{Repo: repo, Notifier: notifier, Logger: logger}
}

// RecordAppointment implements assistant.SchedulingService. mode selects
// between creating a new appointment and rescheduling an existing one.
func (s *DefaultSchedulingService) RecordAppointment(ctx context.Context, appt models.Appointment, mode string, oldTiming string) error {
	switch mode {
	case models.AppointmentModeCreate:
		id, err := s.Repo.Create(ctx, appt)
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		s.Logger.Info("appointment created",
			zap.String("appointment_id", id),
			zap.String("email", appt.Email),
			zap.String("timing", appt.Timing))
		s.notifyAsync(appt, mode, oldTiming)
		return nil

	case models.AppointmentModeUpdate:
		if err := s.Repo.UpdateTiming(ctx, appt.Email, oldTiming, appt.Timing); err != nil {
			return fmt.Errorf("update appointment timing: %w", err)
		}
		s.Logger.Info("appointment rescheduled",
			zap.String("email", appt.Email),
			zap.String("old_timing", oldTiming),
			zap.String("new_timing", appt.Timing))
		s.notifyAsync(appt, mode, oldTiming)
		return nil
	}

	return fmt.Errorf("unknown appointment mode %q", mode)
}

// notifyAsync sends the booking emails in the background. A failed email
// never fails the booking.
func (s *DefaultSchedulingService) notifyAsync(appt models.Appointment, mode, oldTiming string) {
	if s.Notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		var err error
		if mode == models.AppointmentModeUpdate {
			err = s.Notifier.SendBookingUpdate(ctx, appt, oldTiming)
		} else {
			err = s.Notifier.SendBookingConfirmation(ctx, appt)
		}
		if err != nil {
			s.Logger.Warn("booking notification failed",
				zap.String("email", appt.Email),
				zap.String("mode", mode),
				zap.Error(err))
		}
	}()
}
