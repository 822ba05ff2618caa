// File: services/assistant/dispatch.go
package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"

	"go.uber.org/zap"
)

// User-facing message templates. Wording is fixed so tests and clients can
// rely on it.
const (
	bookingSuccessTemplate = "Perfect, you're all set, %s! ✅ Your appointment is booked for %s. " +
		"A confirmation email is on its way to %s, and our team will reach out on %s if anything needs adjusting. " +
		"Is there anything else I can help you with?"

	bookingDegradedTemplate = "Thank you, %s, we've received your appointment request for %s. " +
		"Our booking system is taking a moment to catch up, so if you don't hear from us shortly, " +
		"please reach out to us directly at %s and we'll confirm right away."

	updateSuccessTemplate = "Done! 🗓️ Your appointment has been moved from %s to %s. " +
		"A confirmation email is on its way to %s."

	updateDegradedTemplate = "We've noted your request to move the appointment to %s, but couldn't update it " +
		"automatically just now. Please reach out to us directly at %s and we'll sort it out."

	// Appended when a control tag was present but unusable.
	parseFailureNotice = "I'm sorry, I ran into a technical issue completing that. " +
		"Please contact us directly and we'll take care of it right away."

	// Synthesized when the model call fails outright.
	apologyMessage = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."
)

// errTagValidation classifies a payload whose required fields are missing.
// It is handled exactly like a parse failure.
var errTagValidation = errors.New("control tag payload failed validation")

// actionDispatcher applies a parsed tag: mutates the slot store, invokes the
// scheduling collaborator, and decides the user-facing wording. Persistence
// errors never propagate past it.
type actionDispatcher struct {
	store        SessionStore
	scheduler    SchedulingService
	contactEmail string
	logger       *zap.Logger
}

// dispatchResult is what the turn controller folds back into the stream.
type dispatchResult struct {
	// historyText is recorded as the bot side of the turn.
	historyText string
	// synthesized is the message produced by the action, not yet streamed
	// to the caller; empty for plain form updates.
	synthesized string
}

// dispatch applies a single payload for the given session. A validation
// error means the tag must be treated as unparseable by the caller.
func (d *actionDispatcher) dispatch(ctx context.Context, session *models.Session, payload *TagPayload, fullText string) (dispatchResult, error) {
	switch {
	case payload.Booking != nil:
		return d.dispatchBooking(ctx, session, payload.Booking, fullText)
	case payload.Update != nil:
		return d.dispatchUpdate(ctx, session, payload.Update, fullText)
	case payload.Form != nil:
		return d.dispatchForm(session, payload.Form, fullText), nil
	}
	return dispatchResult{}, errTagValidation
}

func (d *actionDispatcher) dispatchForm(session *models.Session, fields map[string]string, fullText string) dispatchResult {
	d.store.ApplyFieldUpdates(session.ID, fields)
	cleaned := StripTags(fullText)
	d.logger.Debug("merged form update",
		zap.String("session_id", session.ID),
		zap.Int("fields", len(fields)))
	return dispatchResult{historyText: cleaned}
}

func (d *actionDispatcher) dispatchBooking(ctx context.Context, session *models.Session, details *BookingDetails, fullText string) (dispatchResult, error) {
	if details.Name == "" || details.Email == "" || details.Phone == "" || details.Timing == "" {
		d.logger.Warn("booking tag missing required fields",
			zap.String("session_id", session.ID),
			zap.String("stage", "dispatch"))
		return dispatchResult{}, errTagValidation
	}

	appt := models.Appointment{
		Name:   details.Name,
		Email:  details.Email,
		Phone:  details.Phone,
		Timing: details.Timing,
	}

	var msg string
	if err := d.scheduler.RecordAppointment(ctx, appt, models.AppointmentModeCreate, ""); err != nil {
		// The booking is still "received" from the user's perspective; slot
		// state is kept so nothing the user typed is lost.
		d.logger.Error("appointment persistence failed",
			zap.String("session_id", session.ID),
			zap.String("stage", "persistence"),
			zap.Error(err))
		msg = fmt.Sprintf(bookingDegradedTemplate, details.Name, details.Timing, d.contactEmail)
	} else {
		d.store.CompleteBooking(session.ID, models.ContactDetails{
			Name:  details.Name,
			Email: details.Email,
			Phone: details.Phone,
		}, details.Timing)
		msg = fmt.Sprintf(bookingSuccessTemplate, details.Name, details.Timing, details.Email, details.Phone)
	}

	return dispatchResult{
		historyText: joinPrefix(VisiblePrefix(fullText), msg),
		synthesized: msg,
	}, nil
}

func (d *actionDispatcher) dispatchUpdate(ctx context.Context, session *models.Session, details *UpdateDetails, fullText string) (dispatchResult, error) {
	if details.Name == "" || details.Email == "" || details.Phone == "" || details.NewTiming == "" {
		d.logger.Warn("update tag missing required fields",
			zap.String("session_id", session.ID),
			zap.String("stage", "dispatch"))
		return dispatchResult{}, errTagValidation
	}

	oldTiming := details.OldTiming
	if oldTiming == "" {
		oldTiming = session.LastAppointmentTiming
	}

	appt := models.Appointment{
		Name:   details.Name,
		Email:  details.Email,
		Phone:  details.Phone,
		Timing: details.NewTiming,
	}

	var msg string
	if err := d.scheduler.RecordAppointment(ctx, appt, models.AppointmentModeUpdate, oldTiming); err != nil {
		// Timing memory is only overwritten on success, uniformly with the
		// create path.
		d.logger.Error("appointment update failed",
			zap.String("session_id", session.ID),
			zap.String("stage", "persistence"),
			zap.Error(err))
		msg = fmt.Sprintf(updateDegradedTemplate, details.NewTiming, d.contactEmail)
	} else {
		d.store.CompleteBooking(session.ID, models.ContactDetails{
			Name:  details.Name,
			Email: details.Email,
			Phone: details.Phone,
		}, details.NewTiming)
		msg = fmt.Sprintf(updateSuccessTemplate, oldTiming, details.NewTiming, details.Email)
	}

	return dispatchResult{
		historyText: joinPrefix(VisiblePrefix(fullText), msg),
		synthesized: msg,
	}, nil
}

// joinPrefix glues streamed prose and a synthesized message into one history
// entry.
func joinPrefix(prefix, msg string) string {
	if prefix == "" {
		return msg
	}
	return prefix + "\n\n" + msg
}
