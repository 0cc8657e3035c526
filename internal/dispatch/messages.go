// ABOUTME: Outbound message templates for the Team Spark bot.
// ABOUTME: HTML formatting with user-supplied values escaped before interpolation.

package dispatch

import (
	"fmt"
	"html"
	"strings"

	"github.com/teamspark/sparkdesk/internal/session"
)

// Keyboard button labels. The transport renders these as reply-keyboard
// buttons; pressing one delivers the label back as plain text.
const (
	ButtonApply       = "Apply to Team"
	ButtonCollaborate = "Collaborate with Team"
)

// Messages holds every fixed text the dispatcher sends.
type Messages struct {
	Welcome      string
	Apply        string
	Ack          string
	NoOperators  string
	ReplyLabel   string
	AlreadyOpen  string
	Registered   string
	WrongSecret  string
	Hint         string
	Delivered    string
	NotDelivered string
}

// DefaultMessages returns the built-in Team Spark texts.
func DefaultMessages() Messages {
	return Messages{
		Welcome: "✨ <b>Welcome to Team Spark!</b>\n\n" +
			"Choose an option below or use the commands:\n" +
			"• /apply - Apply to join the team\n" +
			"• /collaborate - Collaborate with Team Spark",
		Apply: "🚀 <b>Ready to join Team Spark?</b>\n\n" +
			"Fill out our application form and tell us about your skills, " +
			"projects, and what excites you about working with the team.",
		Ack:          "✅ Thanks! Your request was sent to the team. We'll get back to you soon.",
		NoOperators:  "😕 No one from the team is available right now. We saved your message and will follow up.",
		ReplyLabel:   "💬 <b>Team Spark</b>",
		AlreadyOpen:  "You already have a form in progress. Just answer the question above.",
		Registered:   "You're registered as an operator. You'll now receive collaboration requests.",
		WrongSecret:  "That secret doesn't match.",
		Hint:         "Use /collaborate to send the team a request, or /apply to join.",
		Delivered:    "✅ Delivered.",
		NotDelivered: "⚠️ Couldn't deliver your reply. Please try again.",
	}
}

// summaryText renders the completed form for operators: requester
// identity first, then every collected answer, one line per slot.
func summaryText(rec session.Record) string {
	var b strings.Builder
	b.WriteString("📨 <b>New collaboration request</b>\n")
	fmt.Fprintf(&b, "From: %s (user %d, chat %d)\n\n",
		html.EscapeString(rec.VisitorName), rec.VisitorID, rec.ChatID)

	for _, f := range rec.Fields {
		fmt.Fprintf(&b, "<b>%s:</b> %s\n", fieldLabel(f.Key), html.EscapeString(f.Value))
	}

	b.WriteString("\nReply to this message to answer.")
	return b.String()
}

// fieldLabel turns a slot key into a display label.
func fieldLabel(key string) string {
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + key[1:]
}
