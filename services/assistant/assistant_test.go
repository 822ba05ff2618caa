// File: services/assistant/assistant_test.go
package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRetriever struct {
	docs   []models.RetrievedDocument
	err    error
	called int
}

func (f *fakeRetriever) Search(context.Context, string) ([]models.RetrievedDocument, error) {
	f.called++
	return f.docs, f.err
}

type memoryChatLog struct {
	mu      sync.Mutex
	entries []models.ChatLogEntry
}

func (m *memoryChatLog) Append(_ context.Context, entry models.ChatLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

type turnFixture struct {
	svc       *DefaultAssistantService
	store     *MemorySessionStore
	retriever *fakeRetriever
	scheduler *recordingScheduler
	chatLog   *memoryChatLog
}

func newTurnFixture(completer Completer) *turnFixture {
	store := NewMemorySessionStore(time.Hour, zap.NewNop())
	retriever := &fakeRetriever{docs: []models.RetrievedDocument{
		{URL: "https://fuzionest.com/services", Title: "Services", Content: "Web and mobile development."},
	}}
	scheduler := &recordingScheduler{}
	chatLog := &memoryChatLog{}

	svc := NewAssistantService(store, retriever, completer, scheduler, chatLog,
		"Fuzionest", "hello@fuzionest.com", zap.NewNop())
	svc.runner.backoff = time.Millisecond

	return &turnFixture{svc: svc, store: store, retriever: retriever, scheduler: scheduler, chatLog: chatLog}
}

// collect drains the event stream and returns all frames plus the
// concatenation of every chunk.
func collect(events <-chan models.ChatStreamEvent) ([]models.ChatStreamEvent, string) {
	var all []models.ChatStreamEvent
	var text strings.Builder
	for ev := range events {
		all = append(all, ev)
		text.WriteString(ev.ResponseChunk)
	}
	return all, text.String()
}

func TestStreamMessage_PlainAnswer(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{
		scripts: [][]string{{"We build ", "web and mobile apps."}},
		errs:    []error{nil},
	}
	f := newTurnFixture(completer)

	id, events := f.svc.StreamMessage(context.Background(), "s1", "What do you offer?")
	frames, text := collect(events)

	assert.Equal(t, "s1", id)
	assert.Equal(t, "We build web and mobile apps.", text)
	require.NotEmpty(t, frames)
	last := frames[len(frames)-1]
	assert.True(t, last.IsFinal)
	assert.Equal(t, "s1", last.SessionID)
	assert.Equal(t, 1, f.retriever.called)

	session, release := f.store.Acquire("s1")
	defer release()
	require.Len(t, session.History, 1)
	assert.Equal(t, "What do you offer?", session.History[0].User)
	assert.Equal(t, "We build web and mobile apps.", session.History[0].Bot)
}

func TestStreamMessage_GeneratesSessionID(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{scripts: [][]string{{"Hello!"}}, errs: []error{nil}}
	f := newTurnFixture(completer)

	id, events := f.svc.StreamMessage(context.Background(), "", "hi")
	collect(events)

	assert.NotEmpty(t, id)
	assert.Equal(t, 1, f.store.Count())
}

func TestStreamMessage_BookingIntentSkipsRetrieval(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{
		scripts: [][]string{{"Happy to set that up! Could I get your full name and email?"}},
		errs:    []error{nil},
	}
	f := newTurnFixture(completer)

	_, events := f.svc.StreamMessage(context.Background(), "s1", "I want to book an appointment")
	collect(events)

	assert.Zero(t, f.retriever.called)
}

func TestStreamMessage_MidBookingSkipsRetrieval(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{
		scripts: [][]string{{"Thanks! And your phone number?"}},
		errs:    []error{nil},
	}
	f := newTurnFixture(completer)
	f.store.ApplyFieldUpdates("s1", map[string]string{"name": "Jane"})

	_, events := f.svc.StreamMessage(context.Background(), "s1", "jane@x.com")
	collect(events)

	assert.Zero(t, f.retriever.called)
}

func TestStreamMessage_RetrievalFailureDegrades(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{scripts: [][]string{{"Here is what I know."}}, errs: []error{nil}}
	f := newTurnFixture(completer)
	f.retriever.err = errors.New("index offline")

	_, events := f.svc.StreamMessage(context.Background(), "s1", "What do you offer?")
	frames, text := collect(events)

	assert.Equal(t, "Here is what I know.", text)
	assert.Empty(t, frames[len(frames)-1].Error)
}

func TestStreamMessage_DivergentRetryNotSpliced(t *testing.T) {
	t.Parallel()

	// Attempt one streams a few words then dies; the retry answers with
	// different prose. The caller must never see the two glued together at
	// a byte offset; the new answer follows as its own paragraph.
	completer := &scriptedCompleter{
		scripts: [][]string{
			{"Our team "},
			{"We provide consulting."},
		},
		errs: []error{errors.New("stream reset"), nil},
	}
	f := newTurnFixture(completer)

	_, events := f.svc.StreamMessage(context.Background(), "s1", "What do you offer?")
	_, text := collect(events)

	assert.Equal(t, "Our team \n\nWe provide consulting.", text)

	// History keeps only the answer that actually completed.
	session, release := f.store.Acquire("s1")
	defer release()
	require.Len(t, session.History, 1)
	assert.Equal(t, "We provide consulting.", session.History[0].Bot)
}

func TestStreamMessage_FormUpdateTurn(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{
		scripts: [][]string{{
			"Thanks John! What's your phone number?\n",
			"FORM_UPDATE:{\"name\":\"John\",\"email\":\"j@x.com\"}",
		}},
		errs: []error{nil},
	}
	f := newTurnFixture(completer)

	_, events := f.svc.StreamMessage(context.Background(), "s1", "I'm John, j@x.com")
	_, text := collect(events)

	assert.NotContains(t, text, "FORM_UPDATE")
	assert.NotContains(t, text, "{")
	assert.Contains(t, text, "Thanks John!")

	session, release := f.store.Acquire("s1")
	defer release()
	assert.Equal(t, "John", session.Slots["name"])
	assert.NotContains(t, session.History[0].Bot, "FORM_UPDATE")
}

func TestStreamMessage_BookingTurn(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{
		scripts: [][]string{{
			"Booking that now. ",
			"BOOKING_COMPLETE:{\"name\":\"Jane\",\"email\":\"jane@x.com\",\"phone\":\"+1555000\",\"timing\":\"Monday at 3 PM\"}",
		}},
		errs: []error{nil},
	}
	f := newTurnFixture(completer)

	_, events := f.svc.StreamMessage(context.Background(), "s1", "Monday at 3 PM works")
	frames, text := collect(events)

	assert.NotContains(t, text, "BOOKING_COMPLETE")
	assert.Contains(t, text, "Booking that now.")
	assert.Contains(t, text, "Jane")
	assert.Contains(t, text, "Monday at 3 PM")

	require.Len(t, f.scheduler.appts, 1)
	assert.Equal(t, models.AppointmentModeCreate, f.scheduler.modes[0])
	assert.True(t, frames[len(frames)-1].IsFinal)

	session, release := f.store.Acquire("s1")
	defer release()
	require.NotNil(t, session.ConfirmedContact)
	assert.Equal(t, "Monday at 3 PM", session.LastAppointmentTiming)
}

func TestStreamMessage_UnparseableTag(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{
		scripts: [][]string{{"Let me book that. BOOKING_COMPLETE:{\"name\": broken"}},
		errs:    []error{nil},
	}
	f := newTurnFixture(completer)

	_, events := f.svc.StreamMessage(context.Background(), "s1", "book it")
	_, text := collect(events)

	assert.NotContains(t, text, "BOOKING_COMPLETE")
	assert.Contains(t, text, "Let me book that.")
	assert.Contains(t, text, "technical issue")
	assert.Empty(t, f.scheduler.appts)
}

func TestStreamMessage_ModelFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("model unavailable")
	completer := &scriptedCompleter{
		scripts: [][]string{{}, {}, {}},
		errs:    []error{cause, cause, cause},
	}
	f := newTurnFixture(completer)

	_, events := f.svc.StreamMessage(context.Background(), "s1", "hello")
	frames, text := collect(events)

	assert.Contains(t, text, "trouble responding")
	assert.True(t, frames[len(frames)-1].IsFinal)

	// The failed turn still lands in history so the next turn has context.
	session, release := f.store.Acquire("s1")
	defer release()
	require.Len(t, session.History, 1)
	assert.Contains(t, session.History[0].Bot, "trouble responding")
}

func TestStreamMessage_TranscriptLogged(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{scripts: [][]string{{"Hi there!"}}, errs: []error{nil}}
	f := newTurnFixture(completer)

	_, events := f.svc.StreamMessage(context.Background(), "s1", "hello")
	collect(events)

	// The transcript write is asynchronous.
	require.Eventually(t, func() bool {
		f.chatLog.mu.Lock()
		defer f.chatLog.mu.Unlock()
		return len(f.chatLog.entries) == 1
	}, time.Second, 10*time.Millisecond)

	f.chatLog.mu.Lock()
	defer f.chatLog.mu.Unlock()
	assert.Equal(t, "hello", f.chatLog.entries[0].UserMessage)
	assert.Equal(t, "Hi there!", f.chatLog.entries[0].BotResponse)
}
