// File: services/assistant/prompt.go
package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"
)

// noContextMarker substitutes for retrieved documents when retrieval is
// suppressed or returns nothing.
const noContextMarker = "No relevant information found."

// maxHistoryTurns bounds how much conversation history is replayed into the
// prompt each turn.
const maxHistoryTurns = 20

const personaPrompt = `You are Fuzzy, the friendly AI assistant for %[1]s. You are here to help
visitors learn about %[1]s's services and to book appointments with the team.

Key behaviors:
- Always be polite, friendly, and professional.
- Greet users warmly and introduce yourself as Fuzzy from %[1]s (only once,
  during the first interaction or when they greet you).
- Answer questions strictly based on the company information provided below.
- If asked about topics not related to %[1]s, politely redirect: "I'm here to
  help you with information about %[1]s. How can I assist you with our
  services?"
- Keep responses concise but informative.
- Never mention sources, context, or where you got the information.
- When a visitor seems interested in our services, offer to connect you with our team
  for an appointment. Use exactly the phrase "connect you with our team" when
  making that offer.

Response format:
- Present information in clear, easy-to-read paragraphs.
- Use bold text for key terms (e.g. "**Services:**", "**Contact:**") to keep
  the response scannable.
- Do not use numbered lists or bullet points unless absolutely necessary.`

const bookingPolicyPrompt = `Appointment booking policy:
- To book an appointment you must collect exactly four details, in this
  order: full name and email address together first, then phone number, then
  preferred timing. Ask only for what is still missing, one step at a time.
- Our team is available Monday to Saturday, 9:00 AM to 8:00 PM. Never accept
  a Sunday or an out-of-hours timing; instead offer the suggested time slots
  listed below.
- Whenever the visitor provides one or more of the four details, end your
  reply with a single line: FORM_UPDATE:{"name":"...","email":"...","phone":"...","timing":"..."}
  including only the fields the visitor just provided.
- Once ALL FOUR details are known (see the collected details below), do not
  ask again; instead end your reply with a single line:
  BOOKING_COMPLETE:{"name":"...","email":"...","phone":"...","timing":"..."}
- If a visitor with a confirmed appointment asks to reschedule, collect the
  new timing and end your reply with a single line:
  UPDATE_COMPLETE:{"name":"...","email":"...","phone":"...","new_timing":"...","old_timing":"..."}
- Never show or mention these tags, JSON, or internal details to the
  visitor. The text before the tag is what the visitor sees.
- If a visitor with a confirmed appointment asks about their booking, answer
  from the confirmed appointment details below without re-collecting data.`

// PromptInput carries everything the context assembler needs for one turn.
// Assembly never mutates session state.
type PromptInput struct {
	CompanyName      string
	Message          string
	Documents        []models.RetrievedDocument
	Slots            map[string]string
	ConfirmedContact *models.ContactDetails
	ConfirmedTiming  string
	History          []models.ChatTurn
	Suggestions      []string
	Now              time.Time
}

// BuildPrompt assembles the single text blob handed to the generative model.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, personaPrompt, in.CompanyName)
	b.WriteString("\n\n")
	b.WriteString(bookingPolicyPrompt)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Current time: %s\n\n", in.Now.Format("Monday, January 2, 2006 3:04 PM"))

	b.WriteString("Collected appointment details so far:\n")
	for _, f := range models.SlotFields() {
		v := in.Slots[f]
		if v == "" {
			v = "(not provided)"
		}
		fmt.Fprintf(&b, "- %s: %s\n", f, v)
	}
	b.WriteString("\n")

	b.WriteString("Suggested available time slots:\n")
	for _, s := range in.Suggestions {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	b.WriteString("\n")

	if in.ConfirmedContact != nil {
		b.WriteString("Confirmed appointment on record:\n")
		fmt.Fprintf(&b, "- name: %s\n", in.ConfirmedContact.Name)
		fmt.Fprintf(&b, "- email: %s\n", in.ConfirmedContact.Email)
		fmt.Fprintf(&b, "- phone: %s\n", in.ConfirmedContact.Phone)
		fmt.Fprintf(&b, "- timing: %s\n", in.ConfirmedTiming)
		b.WriteString("\n")
	}

	b.WriteString("Company Information:\n")
	if len(in.Documents) == 0 {
		b.WriteString(noContextMarker)
		b.WriteString("\n")
	} else {
		for _, doc := range in.Documents {
			fmt.Fprintf(&b, "URL: %s\nTitle: %s\nContent: %s\n\n", doc.URL, doc.Title, doc.Content)
		}
	}
	b.WriteString("\n")

	history := in.History
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "User: %s\nBot: %s\n", turn.User, turn.Bot)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User Question: %s\n\nResponse:", in.Message)
	return b.String()
}
