// ABOUTME: Engine advances per-visitor form sessions one validated answer at a time.
// ABOUTME: Concurrent calls for the same visitor are serialized; distinct visitors never contend.

package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// Session errors. All are user-visible as a re-prompt or informational
// reply, never fatal.
var (
	// ErrAlreadyOpen means the visitor already has a form in progress.
	ErrAlreadyOpen = errors.New("form session already open")

	// ErrNoSession means no form is in progress for the visitor.
	ErrNoSession = errors.New("no form session open")

	// ErrInvalidInput means the answer was empty or not plain text.
	// The current prompt is re-sent; the slot does not advance.
	ErrInvalidInput = errors.New("answer must be plain text")
)

// Sender is the outbound transport used for prompts.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) (messageID int, err error)
}

// Completer receives the assembled record when the final slot is
// filled. The session is already removed from the store by then.
type Completer interface {
	Complete(ctx context.Context, rec Record)
}

// Field is one answered slot, in form order.
type Field struct {
	Key   string
	Value string
}

// Record is the completed form.
type Record struct {
	VisitorID   int64
	ChatID      int64
	VisitorName string
	MessageID   int // visitor message that filled the final slot
	Fields      []Field
}

// session is one in-progress form. next indexes the slot currently
// awaiting an answer. The mutex serializes Start/Advance for this
// visitor only.
type session struct {
	mu          sync.Mutex
	visitorID   int64
	chatID      int64
	visitorName string
	answers     []string
	next        int
	removed     bool
}

// Step reports what an Advance call did.
type Step struct {
	Slot      string // slot key just filled
	Completed bool   // final slot filled, record handed off
}

// Engine owns the form session store and the slot sequence.
type Engine struct {
	mu       sync.Mutex
	sessions map[int64]*session

	slots     []Slot
	sender    Sender
	completer Completer
	logger    *slog.Logger
}

// NewEngine creates an Engine. Pass nil slots for the default form and
// nil logger for default.
func NewEngine(slots []Slot, sender Sender, completer Completer, logger *slog.Logger) *Engine {
	if len(slots) == 0 {
		slots = DefaultSlots()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		sessions:  make(map[int64]*session),
		slots:     slots,
		sender:    sender,
		completer: completer,
		logger:    logger.With("component", "session"),
	}
}

// Open reports whether a form is in progress for the visitor.
func (e *Engine) Open(visitorID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.sessions[visitorID]
	return ok
}

// Start opens a form session for the visitor and sends the first
// prompt. Returns ErrAlreadyOpen if one is in progress; the existing
// session is never replaced.
func (e *Engine) Start(ctx context.Context, visitorID, chatID int64, visitorName string) error {
	e.mu.Lock()
	if _, exists := e.sessions[visitorID]; exists {
		e.mu.Unlock()
		return ErrAlreadyOpen
	}

	s := &session{
		visitorID:   visitorID,
		chatID:      chatID,
		visitorName: visitorName,
		answers:     make([]string, len(e.slots)),
	}
	// Hold the session lock across the first prompt so a racing
	// Advance waits until the prompt is out.
	s.mu.Lock()
	e.sessions[visitorID] = s
	e.mu.Unlock()
	defer s.mu.Unlock()

	e.logger.Info("form started", "visitor_id", visitorID, "chat_id", chatID)
	e.prompt(ctx, s)
	return nil
}

// Advance validates the answer for the current slot and moves the
// session forward. Invalid input re-sends the current prompt and
// returns ErrInvalidInput; the visitor may retry indefinitely. Filling
// the final slot removes the session and hands the record to the
// Completer before Advance returns.
func (e *Engine) Advance(ctx context.Context, visitorID int64, messageID int, text string) (Step, error) {
	e.mu.Lock()
	s, ok := e.sessions[visitorID]
	e.mu.Unlock()
	if !ok {
		return Step{}, ErrNoSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The session may have completed between lookup and lock.
	if s.removed {
		return Step{}, ErrNoSession
	}

	answer := strings.TrimSpace(text)
	if answer == "" {
		e.logger.Debug("invalid answer, re-prompting",
			"visitor_id", visitorID,
			"slot", e.slots[s.next].Key,
		)
		e.prompt(ctx, s)
		return Step{}, ErrInvalidInput
	}

	slot := e.slots[s.next]
	s.answers[s.next] = answer
	s.next++

	if s.next < len(e.slots) {
		e.prompt(ctx, s)
		return Step{Slot: slot.Key}, nil
	}

	// Final slot filled: remove first, then hand off.
	s.removed = true
	e.mu.Lock()
	delete(e.sessions, visitorID)
	e.mu.Unlock()

	rec := Record{
		VisitorID:   s.visitorID,
		ChatID:      s.chatID,
		VisitorName: s.visitorName,
		MessageID:   messageID,
		Fields:      make([]Field, len(e.slots)),
	}
	for i, sl := range e.slots {
		rec.Fields[i] = Field{Key: sl.Key, Value: s.answers[i]}
	}

	e.logger.Info("form completed", "visitor_id", visitorID, "chat_id", s.chatID)
	e.completer.Complete(ctx, rec)

	return Step{Slot: slot.Key, Completed: true}, nil
}

// prompt sends the prompt for the session's current slot. Send failure
// is logged and swallowed; the visitor's next message re-prompts.
func (e *Engine) prompt(ctx context.Context, s *session) {
	p := e.slots[s.next]
	if _, err := e.sender.SendText(ctx, s.chatID, p.Prompt); err != nil {
		e.logger.Error("failed to send prompt",
			"error", err,
			"visitor_id", s.visitorID,
			"slot", p.Key,
		)
	}
}
