// ABOUTME: Slot definitions for the collaboration intake form.
// ABOUTME: Fixed prompt order; prompts can be overridden via configuration.

package session

// Slot describes one named form field and the prompt that asks for it.
type Slot struct {
	Key    string
	Prompt string
}

// DefaultSlots returns the built-in intake form: who the visitor is,
// where they are from, what they want to build, when, and how to
// reach them. The order is fixed; prompts are replaceable.
func DefaultSlots() []Slot {
	return []Slot{
		{Key: "name", Prompt: "What's your name?"},
		{Key: "organization", Prompt: "What company or organization are you with?"},
		{Key: "idea", Prompt: "Tell us about your idea or project."},
		{Key: "timeline", Prompt: "What's your timeline?"},
		{Key: "contact", Prompt: "How can we reach you? (email or phone)"},
	}
}
