// File: services/assistant/gate.go
package assistant

import "strings"

// teamOfferPhrase is the canned wording the persona prompt instructs the
// model to use when proposing a booking. Matching against it is a protocol
// check, not a guess at free-form prose.
const teamOfferPhrase = "connect you with our team"

// acknowledgements that close out a completed booking without opening a new
// flow.
var acknowledgementVocab = []string{
	"thanks", "thank you", "thankyou", "ok", "okay", "great", "perfect",
	"no need", "cool", "got it", "alright", "fine", "awesome", "nice",
	"that's all", "thats all", "nothing else", "no thanks",
}

// affirmative tokens accepting an offer to connect with the team.
var affirmativeVocab = []string{
	"yes", "yeah", "yep", "sure", "go ahead", "ok", "okay", "please",
	"please do", "sounds good", "why not", "lets do it", "let's do it",
	"of course", "definitely", "absolutely",
}

// explicit booking intents; these turns open data collection, not Q&A.
var bookingIntentVocab = []string{
	"book an appointment", "book appointment", "book a call", "book a demo",
	"book a meeting", "schedule an appointment", "schedule a call",
	"schedule a meeting", "schedule a demo", "make an appointment",
	"set up a meeting", "talk to the team", "speak to the team",
	"connect with the team", "connect me with the team",
}

// GateInput is everything the retrieval gate looks at. It is a pure function
// of this struct, which keeps the policy unit-testable.
type GateInput struct {
	Message        string
	LastBotMessage string
	SlotsActive    bool // any booking field currently populated
	HasConfirmed   bool // a completed booking is on record for this session
}

// ShouldRetrieve decides whether semantic document lookup runs for this
// turn. Rules are evaluated in order; first match wins.
func ShouldRetrieve(in GateInput) bool {
	msg := normalizeMessage(in.Message)

	// Mid-booking: unrelated context must not destabilize the flow.
	if in.SlotsActive {
		return false
	}

	// Post-confirmation small talk needs no lookup and no new flow.
	if in.HasConfirmed && matchesVocab(msg, acknowledgementVocab) {
		return false
	}

	// An explicit booking request starts collection, not Q&A.
	if containsAny(msg, bookingIntentVocab) {
		return false
	}

	// The user just accepted an offer to connect with the team.
	if strings.Contains(strings.ToLower(in.LastBotMessage), teamOfferPhrase) &&
		matchesVocab(msg, affirmativeVocab) {
		return false
	}

	return true
}

// normalizeMessage lowercases and strips punctuation so "Thanks!!" and
// "thanks" gate identically.
func normalizeMessage(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '\'':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// matchesVocab reports whether a short message matches the vocabulary: an
// exact entry, or an entry followed by at most two trailing words ("thanks a
// lot"). Long messages never match.
func matchesVocab(msg string, vocab []string) bool {
	if msg == "" || len(strings.Fields(msg)) > 4 {
		return false
	}
	for _, v := range vocab {
		if msg == v || strings.HasPrefix(msg, v+" ") {
			return true
		}
	}
	return false
}

func containsAny(msg string, vocab []string) bool {
	for _, v := range vocab {
		if strings.Contains(msg, v) {
			return true
		}
	}
	return false
}
