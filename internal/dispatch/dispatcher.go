// ABOUTME: Dispatcher classifies inbound events and drives the session engine and router.
// ABOUTME: Every outcome is handled here; nothing propagates past Handle.

package dispatch

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"strings"

	"github.com/teamspark/sparkdesk/internal/operator"
	"github.com/teamspark/sparkdesk/internal/router"
	"github.com/teamspark/sparkdesk/internal/session"
)

// Event is one inbound message, already stripped of transport detail.
type Event struct {
	SenderID   int64
	SenderName string
	ChatID     int64
	MessageID  int

	// Text is empty with HasText false for non-text content (a photo
	// with a caption carries the caption as Text).
	Text    string
	HasText bool

	// ReplyToMessageID is non-zero when the sender replied to an
	// earlier message in the same chat.
	ReplyToMessageID int
}

// Replier extends the plain-text send with the two richer replies the
// bot uses: the welcome (option buttons) and the application info
// (form link button). The transport decides how to render them.
type Replier interface {
	SendText(ctx context.Context, chatID int64, text string) (messageID int, err error)
	SendWelcome(ctx context.Context, chatID int64, text string) error
	SendApplyInfo(ctx context.Context, chatID int64, text string) error
}

// Dispatcher wires the transport to the engine. One Handle call per
// inbound event; calls for distinct senders may run concurrently.
type Dispatcher struct {
	replier  Replier
	engine   *session.Engine
	router   *router.Router
	registry *operator.Registry
	messages Messages
	logger   *slog.Logger
}

// New creates a Dispatcher and the session engine it drives; the
// dispatcher is the engine's completion target. Pass nil slots for the
// default form and nil logger for default.
func New(replier Replier, rt *router.Router, registry *operator.Registry, slots []session.Slot, messages Messages, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		replier:  replier,
		router:   rt,
		registry: registry,
		messages: messages,
		logger:   logger.With("component", "dispatch"),
	}
	d.engine = session.NewEngine(slots, replier, d, logger)
	return d
}

// Handle processes one inbound event. It never returns an error:
// session and routing outcomes are user-visible replies or silence.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) {
	if ev.HasText {
		text := strings.TrimSpace(ev.Text)

		if strings.HasPrefix(text, "/") {
			d.handleCommand(ctx, ev, text)
			return
		}
		switch text {
		case ButtonApply:
			d.sendApply(ctx, ev.ChatID)
			return
		case ButtonCollaborate:
			d.startForm(ctx, ev)
			return
		}
	}

	// Operator replies use the transport's reply-to back-reference.
	// The text is escaped here because it lands in an HTML-parse-mode
	// send; a raw "<" in an ordinary reply would be rejected.
	if ev.ReplyToMessageID != 0 && ev.HasText {
		switch d.router.Resolve(ctx, ev.SenderID, ev.ChatID, ev.ReplyToMessageID, html.EscapeString(ev.Text)) {
		case router.RouteDelivered:
			d.reply(ctx, ev.ChatID, d.messages.Delivered)
			return
		case router.RouteDeliveryFailed:
			d.reply(ctx, ev.ChatID, d.messages.NotDelivered)
			return
		}
		// NotOperator and NoSuchThread fall through: an ordinary
		// reply may still be a form answer.
	}

	if d.engine.Open(ev.SenderID) {
		d.advanceForm(ctx, ev)
		return
	}

	d.reply(ctx, ev.ChatID, d.messages.Hint)
}

// handleCommand processes /-prefixed messages.
func (d *Dispatcher) handleCommand(ctx context.Context, ev Event, text string) {
	fields := strings.Fields(text)
	cmd := strings.ToLower(fields[0])

	// Strip a @botname suffix; Telegram appends it in group chats.
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start", "/help":
		if err := d.replier.SendWelcome(ctx, ev.ChatID, d.messages.Welcome); err != nil {
			d.logger.Error("failed to send welcome", "error", err, "chat_id", ev.ChatID)
		}
	case "/apply":
		d.sendApply(ctx, ev.ChatID)
	case "/collaborate":
		d.startForm(ctx, ev)
	case "/register":
		secret := ""
		if len(fields) > 1 {
			secret = fields[1]
		}
		d.register(ctx, ev, secret)
	default:
		d.reply(ctx, ev.ChatID, d.messages.Hint)
	}
}

func (d *Dispatcher) sendApply(ctx context.Context, chatID int64) {
	if err := d.replier.SendApplyInfo(ctx, chatID, d.messages.Apply); err != nil {
		d.logger.Error("failed to send apply info", "error", err, "chat_id", chatID)
	}
}

func (d *Dispatcher) startForm(ctx context.Context, ev Event) {
	err := d.engine.Start(ctx, ev.SenderID, ev.ChatID, ev.SenderName)
	if errors.Is(err, session.ErrAlreadyOpen) {
		d.reply(ctx, ev.ChatID, d.messages.AlreadyOpen)
	}
}

func (d *Dispatcher) advanceForm(ctx context.Context, ev Event) {
	text := ""
	if ev.HasText {
		text = ev.Text
	}
	_, err := d.engine.Advance(ctx, ev.SenderID, ev.MessageID, text)
	switch {
	case err == nil, errors.Is(err, session.ErrInvalidInput):
		// Valid answers advance; invalid input already re-prompted.
	case errors.Is(err, session.ErrNoSession):
		// Session completed between Open and Advance; nothing to do.
	default:
		d.logger.Error("advance failed", "error", err, "visitor_id", ev.SenderID)
	}
}

func (d *Dispatcher) register(ctx context.Context, ev Event, secret string) {
	err := d.registry.Register(ev.SenderID, secret)
	if errors.Is(err, operator.ErrWrongSecret) {
		d.reply(ctx, ev.ChatID, d.messages.WrongSecret)
		return
	}
	d.reply(ctx, ev.ChatID, d.messages.Registered)
}

// Complete implements session.Completer: a finished form is broadcast
// to the operator pool.
func (d *Dispatcher) Complete(ctx context.Context, rec session.Record) {
	origin := router.Origin{
		ChatID:    rec.ChatID,
		MessageID: rec.MessageID,
		VisitorID: rec.VisitorID,
		Name:      rec.VisitorName,
	}
	res := d.router.Broadcast(ctx, origin, summaryText(rec), d.messages.Ack)
	d.logger.Debug("form broadcast",
		"ref", res.Ref,
		"status", res.Status,
		"notified", res.Notified,
	)
}

func (d *Dispatcher) reply(ctx context.Context, chatID int64, text string) {
	if _, err := d.replier.SendText(ctx, chatID, text); err != nil {
		d.logger.Error("failed to send reply", "error", err, "chat_id", chatID)
	}
}
