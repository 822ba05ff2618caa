// File: services/assistant/interface.go
package assistant

import (
	"context"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"
)

// Retriever performs semantic search over the company knowledge base. An
// empty result and an unreachable backend are treated the same way upstream:
// the prompt falls back to the "no relevant information" marker.
type Retriever interface {
	Search(ctx context.Context, query string) ([]models.RetrievedDocument, error)
}

// Completer streams one model completion, invoking onFragment for every text
// fragment as it arrives, and returns the full accumulated text.
type Completer interface {
	CompleteStream(ctx context.Context, prompt string, onFragment func(text string)) (string, error)
}

// SchedulingService persists a booking and triggers notifications. It is
// treated as potentially slow and potentially failing independent of the
// booking data's own validity.
type SchedulingService interface {
	RecordAppointment(ctx context.Context, appt models.Appointment, mode string, oldTiming string) error
}

// ChatLogRepository is the best-effort transcript sink.
type ChatLogRepository interface {
	Append(ctx context.Context, entry models.ChatLogEntry) error
}

// AssistantService drives one conversation turn end to end.
type AssistantService interface {
	// StreamMessage processes one user message. It returns the session id
	// (freshly generated when the caller supplied none) and a channel of
	// outward events. The channel is closed after the final event; every
	// code path terminates in a final event.
	StreamMessage(ctx context.Context, sessionID, message string) (string, <-chan models.ChatStreamEvent)
}
