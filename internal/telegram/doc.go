// Package telegram adapts the Telegram Bot API to the engine's
// transport contract: it turns updates into dispatch events and
// implements the outbound send used for prompts, broadcasts, and
// routed replies.
package telegram
