// File: services/assistant/assistant.go
package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// eventBuffer sizes the per-turn event channel so the turn goroutine rarely
// blocks on a slow consumer.
const eventBuffer = 64

// DefaultAssistantService orchestrates one conversational turn end to end:
// session locking, retrieval gating, prompt assembly, streamed completion,
// tag handling, and transcript logging.
type DefaultAssistantService struct {
	Store        SessionStore
	Retriever    Retriever
	Scheduler    SchedulingService
	ChatLog      ChatLogRepository
	Logger       *zap.Logger
	CompanyName  string
	ContactEmail string

	runner *completionRunner
	now    func() time.Time
}

// NewAssistantService wires the turn controller with its collaborators.
func NewAssistantService(store SessionStore, retriever Retriever, completer Completer, scheduler SchedulingService, chatLog ChatLogRepository, companyName, contactEmail string, logger *zap.Logger) *DefaultAssistantService {
	return &DefaultAssistantService{
		Store:        store,
		Retriever:    retriever,
		Scheduler:    scheduler,
		ChatLog:      chatLog,
		Logger:       logger,
		CompanyName:  companyName,
		ContactEmail: contactEmail,
		runner:       newCompletionRunner(completer, logger),
		now:          time.Now,
	}
}

// StreamMessage runs one turn for the session and returns the (possibly
// newly minted) session id plus the event stream. The channel is closed when
// the turn finishes; the last event always has IsFinal set.
func (s *DefaultAssistantService) StreamMessage(ctx context.Context, sessionID, message string) (string, <-chan models.ChatStreamEvent) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	events := make(chan models.ChatStreamEvent, eventBuffer)
	go s.runTurn(ctx, sessionID, message, events)
	return sessionID, events
}

func (s *DefaultAssistantService) runTurn(ctx context.Context, sessionID, message string, events chan<- models.ChatStreamEvent) {
	defer close(events)
	started := s.now()

	// External calls outlive a dropped client connection so a booking that
	// is already in flight still lands.
	workCtx := context.WithoutCancel(ctx)

	emit := func(ev models.ChatStreamEvent) {
		select {
		case <-ctx.Done():
		case events <- ev:
		}
	}

	session, release := s.Store.Acquire(sessionID)
	defer release()

	gateIn := GateInput{
		Message:        message,
		LastBotMessage: session.LastBotMessage(),
		SlotsActive:    session.HasSlotData(),
		HasConfirmed:   session.ConfirmedContact != nil,
	}

	var docs []models.RetrievedDocument
	if ShouldRetrieve(gateIn) {
		retrieved, err := s.Retriever.Search(workCtx, message)
		if err != nil {
			// Degrade to an answer without company context rather than fail
			// the whole turn.
			s.Logger.Warn("retrieval failed",
				zap.String("session_id", sessionID),
				zap.String("stage", "retrieval"),
				zap.Error(err))
		} else {
			docs = retrieved
		}
	}

	prompt := BuildPrompt(PromptInput{
		CompanyName:      s.CompanyName,
		Message:          message,
		Documents:        docs,
		History:          session.History,
		Slots:            session.Slots,
		ConfirmedContact: session.ConfirmedContact,
		ConfirmedTiming:  session.LastAppointmentTiming,
		Suggestions:      SuggestTimeSlots(s.now(), suggestionCount),
		Now:              s.now(),
	})

	fullText, delivered, err := s.runner.run(workCtx, sessionID, prompt, func(fragment string) {
		emit(models.ChatStreamEvent{ResponseChunk: fragment, SessionID: sessionID})
	})
	if err != nil {
		s.finishTurn(workCtx, sessionID, message, apologyMessage, started)
		emit(models.ChatStreamEvent{ResponseChunk: apologyMessage, IsFinal: true, SessionID: sessionID})
		return
	}

	historyText, finalChunk := s.applyTags(workCtx, session, fullText, delivered)

	s.finishTurn(workCtx, sessionID, message, historyText, started)
	emit(models.ChatStreamEvent{ResponseChunk: finalChunk, IsFinal: true, SessionID: sessionID})
}

// applyTags resolves the completed model text into what the session history
// records and what remains to be streamed to the caller.
func (s *DefaultAssistantService) applyTags(ctx context.Context, session *models.Session, fullText, delivered string) (historyText, finalChunk string) {
	payload, err := ParseTags(fullText)
	if err == nil && payload != nil {
		d := &actionDispatcher{
			store:        s.Store,
			scheduler:    s.Scheduler,
			contactEmail: s.ContactEmail,
			logger:       s.Logger,
		}
		res, derr := d.dispatch(ctx, session, payload, fullText)
		if derr != nil {
			err = derr
		} else {
			if res.synthesized != "" {
				return res.historyText, separated(res.synthesized, delivered)
			}
			// Form update: stream the cleaned remainder past what already
			// went out.
			return res.historyText, remainderAfter(res.historyText, delivered)
		}
	}

	if err != nil {
		// Unusable tag: keep whatever prose preceded it and tell the user
		// to reach us directly.
		s.Logger.Error("control tag unusable",
			zap.String("session_id", session.ID),
			zap.String("stage", "tags"),
			zap.Error(err))
		prefix := strings.TrimSpace(VisiblePrefix(fullText))
		return prefix, separated(parseFailureNotice, delivered)
	}

	// Plain answer, no tags.
	return fullText, remainderAfter(fullText, delivered)
}

// separated prefixes a synthesized message with a paragraph break when prose
// was already streamed before it.
func separated(msg, delivered string) string {
	if delivered != "" {
		return "\n\n" + msg
	}
	return msg
}

// remainderAfter returns the portion of text still owed to the caller. When
// a retry replayed different prose than what already went out, the full text
// is resent after a paragraph break instead of being spliced onto the
// abandoned prefix at a byte offset.
func remainderAfter(text, delivered string) string {
	if delivered == "" {
		return text
	}
	if strings.HasPrefix(text, delivered) {
		return text[len(delivered):]
	}
	// Delivered can exceed the history text by trailing whitespace the tag
	// strip removed; nothing more is owed then.
	if strings.HasPrefix(delivered, text) {
		return ""
	}
	return "\n\n" + text
}

// finishTurn records the turn in session history and appends the transcript
// row off the hot path.
func (s *DefaultAssistantService) finishTurn(ctx context.Context, sessionID, userMessage, botMessage string, started time.Time) {
	s.Store.AppendTurn(sessionID, models.ChatTurn{User: userMessage, Bot: botMessage})

	elapsed := s.now().Sub(started)
	go func() {
		logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := s.ChatLog.Append(logCtx, models.ChatLogEntry{
			SessionID:    sessionID,
			UserMessage:  userMessage,
			BotResponse:  botMessage,
			ResponseTime: elapsed.Seconds(),
			CreatedAt:    time.Now(),
		}); err != nil {
			s.Logger.Warn("transcript append failed",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
	}()
}
