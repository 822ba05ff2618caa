// File: services/assistant/tags.go
package assistant

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"
)

// Control-tag markers the model embeds in its output to signal backend
// actions. The JSON payload after a marker must never reach the end user.
const (
	TagMarkerForm    = "FORM_UPDATE:"
	TagMarkerBooking = "BOOKING_COMPLETE:"
	TagMarkerUpdate  = "UPDATE_COMPLETE:"
)

// tagMarkers, in dispatch-priority order.
var tagMarkers = []string{TagMarkerBooking, TagMarkerUpdate, TagMarkerForm}

// ErrTagUnparseable is returned when a control marker is present but no
// usable JSON payload could be recovered from the surrounding text.
var ErrTagUnparseable = errors.New("control tag present but payload unparseable")

// BookingDetails is the payload of a BOOKING_COMPLETE tag.
type BookingDetails struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Timing string `json:"timing"`
}

// UpdateDetails is the payload of an UPDATE_COMPLETE tag.
type UpdateDetails struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	NewTiming string `json:"new_timing"`
	OldTiming string `json:"old_timing"`
}

// TagPayload is the transient parse result of one model response. At most
// one of the three variants is set; booking and update take precedence over
// a co-occurring form update.
type TagPayload struct {
	Form    map[string]string
	Booking *BookingDetails
	Update  *UpdateDetails
}

// ParseTags extracts a structured payload from raw model output. It returns
// (nil, nil) when no marker is present, and (nil, ErrTagUnparseable) when a
// marker is present but its JSON cannot be recovered. It is a pure function:
// parsing the same text twice yields the same result.
func ParseTags(text string) (*TagPayload, error) {
	if !containsMarker(text) {
		return nil, nil
	}

	if strings.Contains(text, TagMarkerBooking) {
		if obj, ok := extractObject(text, TagMarkerBooking); ok {
			var details BookingDetails
			if err := json.Unmarshal([]byte(obj), &details); err == nil {
				return &TagPayload{Booking: &details}, nil
			}
		}
		if details, ok := looseBooking(text); ok {
			return &TagPayload{Booking: details}, nil
		}
		return nil, ErrTagUnparseable
	}

	if strings.Contains(text, TagMarkerUpdate) {
		if obj, ok := extractObject(text, TagMarkerUpdate); ok {
			var details UpdateDetails
			if err := json.Unmarshal([]byte(obj), &details); err == nil {
				return &TagPayload{Update: &details}, nil
			}
		}
		if details, ok := looseUpdate(text); ok {
			return &TagPayload{Update: details}, nil
		}
		return nil, ErrTagUnparseable
	}

	if obj, ok := extractObject(text, TagMarkerForm); ok {
		fields := map[string]string{}
		if err := json.Unmarshal([]byte(obj), &fields); err == nil {
			return &TagPayload{Form: fields}, nil
		}
	}
	if fields, ok := looseForm(text); ok {
		return &TagPayload{Form: fields}, nil
	}

	return nil, ErrTagUnparseable
}

// StripTags removes every marker-plus-payload region from the user-visible
// text, leaving surrounding prose in place.
func StripTags(text string) string {
	for _, marker := range tagMarkers {
		for {
			idx := strings.Index(text, marker)
			if idx < 0 {
				break
			}
			end := len(text)
			if _, objEnd, ok := balancedObjectAfter(text, idx+len(marker)); ok {
				end = objEnd
			}
			text = text[:idx] + text[end:]
		}
	}
	return strings.TrimRight(text, " \t\n")
}

// VisiblePrefix returns the text before the first control marker, for use
// when the payload itself turned out to be unusable.
func VisiblePrefix(text string) string {
	cut := len(text)
	for _, marker := range tagMarkers {
		if idx := strings.Index(text, marker); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return strings.TrimRight(text[:cut], " \t\n")
}

func containsMarker(text string) bool {
	for _, marker := range tagMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// extractObject locates marker in text and returns the balanced JSON object
// following it.
func extractObject(text, marker string) (string, bool) {
	idx := strings.Index(text, marker)
	if idx < 0 {
		return "", false
	}
	obj, _, ok := balancedObjectAfter(text, idx+len(marker))
	return obj, ok
}

// balancedObjectAfter scans forward from offset for the first '{' and
// returns the substring up to its matching '}', honoring JSON string
// literals and escapes, plus the index just past the object.
func balancedObjectAfter(text string, offset int) (string, int, bool) {
	start := strings.IndexByte(text[offset:], '{')
	if start < 0 {
		return "", 0, false
	}
	start += offset

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], i + 1, true
			}
		}
	}
	return "", 0, false
}

// Loose fallbacks: when the marker's own object is broken, look for any
// balanced object elsewhere in the text carrying the expected keys.

func looseBooking(text string) (*BookingDetails, bool) {
	for _, obj := range allObjects(text) {
		var d BookingDetails
		if err := json.Unmarshal([]byte(obj), &d); err != nil {
			continue
		}
		if d.Name != "" && d.Email != "" && d.Phone != "" && d.Timing != "" {
			return &d, true
		}
	}
	return nil, false
}

func looseUpdate(text string) (*UpdateDetails, bool) {
	for _, obj := range allObjects(text) {
		var d UpdateDetails
		if err := json.Unmarshal([]byte(obj), &d); err != nil {
			continue
		}
		if d.Name != "" && d.NewTiming != "" {
			return &d, true
		}
	}
	return nil, false
}

func looseForm(text string) (map[string]string, bool) {
	for _, obj := range allObjects(text) {
		fields := map[string]string{}
		if err := json.Unmarshal([]byte(obj), &fields); err != nil {
			continue
		}
		for _, f := range models.SlotFields() {
			if fields[f] != "" {
				return fields, true
			}
		}
	}
	return nil, false
}

// allObjects collects every top-level balanced JSON object in the text.
func allObjects(text string) []string {
	var objs []string
	for offset := 0; offset < len(text); {
		obj, end, ok := balancedObjectAfter(text, offset)
		if !ok {
			break
		}
		objs = append(objs, obj)
		offset = end
	}
	return objs
}
