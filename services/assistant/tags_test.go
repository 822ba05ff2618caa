// File: services/assistant/tags_test.go
package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTags_NoMarker(t *testing.T) {
	t.Parallel()

	payload, err := ParseTags("We offer web and mobile development services.")
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestParseTags_FormUpdate(t *testing.T) {
	t.Parallel()

	text := `Great, thanks John! Could I also get your phone number?
FORM_UPDATE:{"name":"John Doe","email":"john@example.com"}`

	payload, err := ParseTags(text)
	require.NoError(t, err)
	require.NotNil(t, payload)
	require.NotNil(t, payload.Form)
	assert.Equal(t, "John Doe", payload.Form["name"])
	assert.Equal(t, "john@example.com", payload.Form["email"])
	assert.Empty(t, payload.Form["phone"])
}

func TestParseTags_BookingComplete(t *testing.T) {
	t.Parallel()

	text := `You're all set!
BOOKING_COMPLETE:{"name":"Jane","email":"jane@x.com","phone":"+1555000","timing":"Monday, Mar 2 at 3 PM"}`

	payload, err := ParseTags(text)
	require.NoError(t, err)
	require.NotNil(t, payload.Booking)
	assert.Equal(t, "Jane", payload.Booking.Name)
	assert.Equal(t, "Monday, Mar 2 at 3 PM", payload.Booking.Timing)
	assert.Nil(t, payload.Form)
	assert.Nil(t, payload.Update)
}

func TestParseTags_UpdateComplete(t *testing.T) {
	t.Parallel()

	text := `Done.
UPDATE_COMPLETE:{"name":"Jane","email":"jane@x.com","phone":"+1555000","new_timing":"Tuesday at 4 PM","old_timing":"Monday at 3 PM"}`

	payload, err := ParseTags(text)
	require.NoError(t, err)
	require.NotNil(t, payload.Update)
	assert.Equal(t, "Tuesday at 4 PM", payload.Update.NewTiming)
	assert.Equal(t, "Monday at 3 PM", payload.Update.OldTiming)
}

func TestParseTags_BookingTakesPrecedenceOverForm(t *testing.T) {
	t.Parallel()

	text := `FORM_UPDATE:{"timing":"Monday at 3 PM"}
BOOKING_COMPLETE:{"name":"Jane","email":"jane@x.com","phone":"+1555000","timing":"Monday at 3 PM"}`

	payload, err := ParseTags(text)
	require.NoError(t, err)
	require.NotNil(t, payload.Booking)
	assert.Nil(t, payload.Form)
}

func TestParseTags_LooseFallback(t *testing.T) {
	t.Parallel()

	// Marker followed by broken JSON, but a valid object appears elsewhere.
	text := `BOOKING_COMPLETE: oops the payload went here instead
{"name":"Jane","email":"jane@x.com","phone":"+1555000","timing":"Monday at 3 PM"}`

	payload, err := ParseTags(text)
	require.NoError(t, err)
	require.NotNil(t, payload.Booking)
	assert.Equal(t, "Jane", payload.Booking.Name)
}

func TestParseTags_Unparseable(t *testing.T) {
	t.Parallel()

	payload, err := ParseTags(`BOOKING_COMPLETE:{"name": "Jane", "email":`)
	assert.ErrorIs(t, err, ErrTagUnparseable)
	assert.Nil(t, payload)
}

func TestParseTags_Idempotent(t *testing.T) {
	t.Parallel()

	text := `Thanks! FORM_UPDATE:{"phone":"+1555000"}`
	first, err1 := ParseTags(text)
	second, err2 := ParseTags(text)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}

func TestParseTags_NestedBracesInStrings(t *testing.T) {
	t.Parallel()

	text := `FORM_UPDATE:{"name":"We {love} braces","email":"a@b.c"}`
	payload, err := ParseTags(text)
	require.NoError(t, err)
	require.NotNil(t, payload.Form)
	assert.Equal(t, "We {love} braces", payload.Form["name"])
}

func TestStripTags(t *testing.T) {
	t.Parallel()

	t.Run("removes marker and payload", func(t *testing.T) {
		t.Parallel()
		text := "Got it, thanks!\nFORM_UPDATE:{\"name\":\"John\"}"
		assert.Equal(t, "Got it, thanks!", StripTags(text))
	})

	t.Run("keeps trailing prose", func(t *testing.T) {
		t.Parallel()
		text := "Before FORM_UPDATE:{\"name\":\"John\"} after"
		assert.Equal(t, "Before  after", StripTags(text))
	})

	t.Run("truncated payload removed to end", func(t *testing.T) {
		t.Parallel()
		text := "Noted! FORM_UPDATE:{\"name\":\"Jo"
		assert.Equal(t, "Noted!", StripTags(text))
	})

	t.Run("no marker is a no-op", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "plain answer", StripTags("plain answer"))
	})
}

func TestVisiblePrefix(t *testing.T) {
	t.Parallel()

	text := "Here is the visible part. BOOKING_COMPLETE:{\"name\":"
	assert.Equal(t, "Here is the visible part.", VisiblePrefix(text))
	assert.Equal(t, "no markers here", VisiblePrefix("no markers here"))
}
