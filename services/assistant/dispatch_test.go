// File: services/assistant/dispatch_test.go
package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingScheduler captures RecordAppointment calls and fails on demand.
type recordingScheduler struct {
	err       error
	appts     []models.Appointment
	modes     []string
	oldTiming []string
}

func (r *recordingScheduler) RecordAppointment(_ context.Context, appt models.Appointment, mode string, oldTiming string) error {
	r.appts = append(r.appts, appt)
	r.modes = append(r.modes, mode)
	r.oldTiming = append(r.oldTiming, oldTiming)
	return r.err
}

func newTestDispatcher(store SessionStore, sched *recordingScheduler) *actionDispatcher {
	return &actionDispatcher{
		store:        store,
		scheduler:    sched,
		contactEmail: "hello@fuzionest.com",
		logger:       zap.NewNop(),
	}
}

func TestDispatch_FormUpdate(t *testing.T) {
	t.Parallel()
	store := NewMemorySessionStore(time.Hour, zap.NewNop())
	session, release := store.Acquire("s1")
	defer release()

	d := newTestDispatcher(store, &recordingScheduler{})
	full := "Thanks John! What's your phone number?\nFORM_UPDATE:{\"name\":\"John\",\"email\":\"j@x.com\"}"
	res, err := d.dispatch(context.Background(), session, &TagPayload{
		Form: map[string]string{"name": "John", "email": "j@x.com"},
	}, full)

	require.NoError(t, err)
	assert.Equal(t, "Thanks John! What's your phone number?", res.historyText)
	assert.Empty(t, res.synthesized)
	assert.Equal(t, "John", session.Slots["name"])
	assert.Equal(t, "j@x.com", session.Slots["email"])
}

func TestDispatch_BookingSuccess(t *testing.T) {
	t.Parallel()
	store := NewMemorySessionStore(time.Hour, zap.NewNop())
	session, release := store.Acquire("s1")
	defer release()
	store.ApplyFieldUpdates("s1", map[string]string{"name": "Jane"})

	sched := &recordingScheduler{}
	d := newTestDispatcher(store, sched)
	details := &BookingDetails{Name: "Jane", Email: "jane@x.com", Phone: "+1555000", Timing: "Monday at 3 PM"}
	res, err := d.dispatch(context.Background(), session, &TagPayload{Booking: details}, "BOOKING_COMPLETE:{}")

	require.NoError(t, err)
	require.Len(t, sched.appts, 1)
	assert.Equal(t, models.AppointmentModeCreate, sched.modes[0])
	assert.Equal(t, "Jane", sched.appts[0].Name)

	assert.Contains(t, res.synthesized, "Jane")
	assert.Contains(t, res.synthesized, "Monday at 3 PM")

	// Confirmation memory set, slots reset.
	require.NotNil(t, session.ConfirmedContact)
	assert.Equal(t, "Monday at 3 PM", session.LastAppointmentTiming)
	assert.False(t, session.HasSlotData())
}

func TestDispatch_BookingOutOfHoursForwarded(t *testing.T) {
	t.Parallel()
	store := NewMemorySessionStore(time.Hour, zap.NewNop())
	session, release := store.Acquire("s1")
	defer release()

	// Working hours are enforced conversationally, in the prompt. Once the
	// model confirms a timing the dispatcher records it as-is, even a slot
	// outside Monday to Saturday 10 AM to 7 PM.
	sched := &recordingScheduler{}
	d := newTestDispatcher(store, sched)
	details := &BookingDetails{Name: "Jane", Email: "jane@x.com", Phone: "+1555000", Timing: "Sunday 7 AM"}
	res, err := d.dispatch(context.Background(), session, &TagPayload{Booking: details}, "BOOKING_COMPLETE:{}")

	require.NoError(t, err)
	require.Len(t, sched.appts, 1)
	assert.Equal(t, "Sunday 7 AM", sched.appts[0].Timing)
	assert.Contains(t, res.synthesized, "Sunday 7 AM")
}

func TestDispatch_BookingPersistenceFailure(t *testing.T) {
	t.Parallel()
	store := NewMemorySessionStore(time.Hour, zap.NewNop())
	session, release := store.Acquire("s1")
	defer release()
	store.ApplyFieldUpdates("s1", map[string]string{"name": "Jane", "email": "jane@x.com"})

	sched := &recordingScheduler{err: errors.New("mongo down")}
	d := newTestDispatcher(store, sched)
	details := &BookingDetails{Name: "Jane", Email: "jane@x.com", Phone: "+1555000", Timing: "Monday at 3 PM"}
	res, err := d.dispatch(context.Background(), session, &TagPayload{Booking: details}, "BOOKING_COMPLETE:{}")

	require.NoError(t, err, "persistence failure degrades, it does not fail the dispatch")
	assert.Contains(t, res.synthesized, "hello@fuzionest.com")

	// No confirmation on failure; collected slots survive.
	assert.Nil(t, session.ConfirmedContact)
	assert.True(t, session.HasSlotData())
}

func TestDispatch_BookingMissingFields(t *testing.T) {
	t.Parallel()
	store := NewMemorySessionStore(time.Hour, zap.NewNop())
	session, release := store.Acquire("s1")
	defer release()
	// Phone is in the slots but absent from the tag: no backfill happens.
	store.ApplyFieldUpdates("s1", map[string]string{"phone": "+1555000"})

	sched := &recordingScheduler{}
	d := newTestDispatcher(store, sched)
	details := &BookingDetails{Name: "Jane", Email: "jane@x.com", Timing: "Monday at 3 PM"}
	_, err := d.dispatch(context.Background(), session, &TagPayload{Booking: details}, "BOOKING_COMPLETE:{}")

	assert.ErrorIs(t, err, errTagValidation)
	assert.Empty(t, sched.appts, "invalid payload must not reach the scheduler")
}

func TestDispatch_UpdateSuccess(t *testing.T) {
	t.Parallel()
	store := NewMemorySessionStore(time.Hour, zap.NewNop())
	session, release := store.Acquire("s1")
	defer release()
	store.CompleteBooking("s1", models.ContactDetails{Name: "Jane", Email: "jane@x.com", Phone: "+1555000"}, "Monday at 3 PM")

	sched := &recordingScheduler{}
	d := newTestDispatcher(store, sched)
	details := &UpdateDetails{Name: "Jane", Email: "jane@x.com", Phone: "+1555000", NewTiming: "Tuesday at 4 PM"}
	res, err := d.dispatch(context.Background(), session, &TagPayload{Update: details}, "UPDATE_COMPLETE:{}")

	require.NoError(t, err)
	require.Len(t, sched.appts, 1)
	assert.Equal(t, models.AppointmentModeUpdate, sched.modes[0])
	// old_timing omitted by the model falls back to the session's memory.
	assert.Equal(t, "Monday at 3 PM", sched.oldTiming[0])
	assert.Equal(t, "Tuesday at 4 PM", sched.appts[0].Timing)

	assert.Contains(t, res.synthesized, "Monday at 3 PM")
	assert.Contains(t, res.synthesized, "Tuesday at 4 PM")
	assert.Equal(t, "Tuesday at 4 PM", session.LastAppointmentTiming)
}

func TestDispatch_UpdateFailureKeepsTimingMemory(t *testing.T) {
	t.Parallel()
	store := NewMemorySessionStore(time.Hour, zap.NewNop())
	session, release := store.Acquire("s1")
	defer release()
	store.CompleteBooking("s1", models.ContactDetails{Name: "Jane", Email: "jane@x.com", Phone: "+1555000"}, "Monday at 3 PM")

	sched := &recordingScheduler{err: errors.New("mongo down")}
	d := newTestDispatcher(store, sched)
	details := &UpdateDetails{Name: "Jane", Email: "jane@x.com", Phone: "+1555000", NewTiming: "Tuesday at 4 PM"}
	res, err := d.dispatch(context.Background(), session, &TagPayload{Update: details}, "UPDATE_COMPLETE:{}")

	require.NoError(t, err)
	assert.Contains(t, res.synthesized, "hello@fuzionest.com")
	assert.Equal(t, "Monday at 3 PM", session.LastAppointmentTiming, "timing memory untouched on failure")
}

func TestDispatch_PrefixJoinedIntoHistory(t *testing.T) {
	t.Parallel()
	store := NewMemorySessionStore(time.Hour, zap.NewNop())
	session, release := store.Acquire("s1")
	defer release()

	sched := &recordingScheduler{}
	d := newTestDispatcher(store, sched)
	details := &BookingDetails{Name: "Jane", Email: "jane@x.com", Phone: "+1555000", Timing: "Monday at 3 PM"}
	full := "Let me get that booked for you.\nBOOKING_COMPLETE:{\"name\":\"Jane\"}"
	res, err := d.dispatch(context.Background(), session, &TagPayload{Booking: details}, full)

	require.NoError(t, err)
	assert.Contains(t, res.historyText, "Let me get that booked for you.")
	assert.Contains(t, res.historyText, res.synthesized)
}
