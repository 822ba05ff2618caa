// File: services/notification/mailer.go
package notification

import (
	"context"
	"fmt"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/config"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// EmailNotificationService delivers booking emails over SMTP.
type EmailNotificationService struct {
	dialer      *gomail.Dialer
	from        string
	notifyEmail string
	companyName string
	logger      *zap.Logger
}

// NewEmailNotificationService builds the mailer from the loaded configuration.
func NewEmailNotificationService(logger *zap.Logger) *EmailNotificationService {
	cfg := config.AppConfig
	return &EmailNotificationService{
		dialer:      gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:        cfg.SMTPFrom,
		notifyEmail: cfg.NotifyEmail,
		companyName: cfg.CompanyName,
		logger:      logger,
	}
}

// SendBookingConfirmation implements NotificationService.
func (n *EmailNotificationService) SendBookingConfirmation(ctx context.Context, appt models.Appointment) error {
	subject := fmt.Sprintf("Your appointment with %s is confirmed", n.companyName)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment with %s is confirmed for %s.\n\n"+
			"We'll reach you on %s if anything changes.\n\nSee you soon!\n%s",
		appt.Name, n.companyName, appt.Timing, appt.Phone, n.companyName)

	if err := n.send(ctx, appt.Email, subject, body); err != nil {
		return fmt.Errorf("send customer confirmation: %w", err)
	}

	internalBody := fmt.Sprintf(
		"New appointment booked.\n\nName: %s\nEmail: %s\nPhone: %s\nTiming: %s",
		appt.Name, appt.Email, appt.Phone, appt.Timing)
	if err := n.send(ctx, n.notifyEmail, "New appointment booked", internalBody); err != nil {
		return fmt.Errorf("send internal notification: %w", err)
	}
	return nil
}

// SendBookingUpdate implements NotificationService.
func (n *EmailNotificationService) SendBookingUpdate(ctx context.Context, appt models.Appointment, oldTiming string) error {
	subject := fmt.Sprintf("Your appointment with %s has been rescheduled", n.companyName)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment with %s has been moved from %s to %s.\n\nSee you then!\n%s",
		appt.Name, n.companyName, oldTiming, appt.Timing, n.companyName)

	if err := n.send(ctx, appt.Email, subject, body); err != nil {
		return fmt.Errorf("send customer update: %w", err)
	}

	internalBody := fmt.Sprintf(
		"Appointment rescheduled.\n\nName: %s\nEmail: %s\nPhone: %s\nOld timing: %s\nNew timing: %s",
		appt.Name, appt.Email, appt.Phone, oldTiming, appt.Timing)
	if err := n.send(ctx, n.notifyEmail, "Appointment rescheduled", internalBody); err != nil {
		return fmt.Errorf("send internal notification: %w", err)
	}
	return nil
}

func (n *EmailNotificationService) send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return err
	}
	n.logger.Debug("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
