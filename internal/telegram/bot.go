// ABOUTME: Telegram long-polling transport for sparkdesk
// ABOUTME: Converts updates to dispatch events and sends HTML messages with the bot's keyboards

package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/teamspark/sparkdesk/internal/dispatch"
)

// maxConcurrentUpdates bounds the handler pool. Distinct visitors are
// handled in parallel; per-visitor ordering is the engine's job.
const maxConcurrentUpdates = 32

// Handler consumes converted inbound events.
type Handler interface {
	Handle(ctx context.Context, ev dispatch.Event)
}

// Bot wraps the Telegram Bot API connection.
type Bot struct {
	api          *tgbotapi.BotAPI
	applyFormURL string
	logger       *slog.Logger
}

// New connects to the Telegram Bot API with the given token.
// Pass nil logger for default.
func New(token, applyFormURL string, logger *slog.Logger) (*Bot, error) {
	if logger == nil {
		logger = slog.Default()
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}

	return &Bot{
		api:          api,
		applyFormURL: applyFormURL,
		logger:       logger.With("component", "telegram"),
	}, nil
}

// Username returns the bot account's username.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run long-polls for updates and hands each message to the handler,
// blocking until ctx is cancelled. Handlers run on a bounded pool so
// one slow send cannot stall unrelated chats.
func (b *Bot) Run(ctx context.Context, h Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("telegram bot running", "username", b.api.Self.UserName)

	sem := make(chan struct{}, maxConcurrentUpdates)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("shutting down telegram bot")
			b.api.StopReceivingUpdates()
			wg.Wait()
			return nil

		case update, ok := <-updates:
			if !ok {
				wg.Wait()
				return nil
			}

			msg := update.Message
			if msg == nil || msg.From == nil {
				continue
			}
			if msg.From.IsBot {
				continue
			}

			ev := eventFromMessage(msg)

			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				h.Handle(ctx, ev)
			}()
		}
	}
}

// SendText sends an HTML-formatted message and returns the message id
// Telegram assigned to it.
func (b *Bot) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return b.send(msg)
}

// SendWelcome sends the welcome text with the option keyboard.
func (b *Bot) SendWelcome(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(dispatch.ButtonApply)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(dispatch.ButtonCollaborate)),
	)
	_, err := b.send(msg)
	return err
}

// SendApplyInfo sends the application text with the form link button.
func (b *Bot) SendApplyInfo(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Apply to Team Spark", b.applyFormURL),
		),
	)
	_, err := b.send(msg)
	return err
}

func (b *Bot) send(msg tgbotapi.MessageConfig) (int, error) {
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("sending to chat %d: %w", msg.ChatID, err)
	}
	return sent.MessageID, nil
}

// eventFromMessage converts a Telegram message into a dispatch event.
// A caption counts as text; media without a caption has HasText false.
func eventFromMessage(msg *tgbotapi.Message) dispatch.Event {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	ev := dispatch.Event{
		SenderID:   msg.From.ID,
		SenderName: displayName(msg.From),
		ChatID:     msg.Chat.ID,
		MessageID:  msg.MessageID,
		Text:       text,
		HasText:    text != "",
	}
	if msg.ReplyToMessage != nil {
		ev.ReplyToMessageID = msg.ReplyToMessage.MessageID
	}
	return ev
}

// displayName builds a human-readable name from the Telegram profile.
func displayName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return name
}
