// ABOUTME: Entry point for the sparkdesk Telegram bot
// ABOUTME: Routes messages between visitors and the Team Spark operator pool

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/teamspark/sparkdesk/internal/config"
	"github.com/teamspark/sparkdesk/internal/dispatch"
	"github.com/teamspark/sparkdesk/internal/operator"
	"github.com/teamspark/sparkdesk/internal/router"
	"github.com/teamspark/sparkdesk/internal/session"
	"github.com/teamspark/sparkdesk/internal/telegram"
	"github.com/teamspark/sparkdesk/internal/thread"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
    ┌──────────────────────────────────┐
    │  sparkdesk · Team Spark contact  │
    └──────────────────────────────────┘
`

// getConfigPath returns the path to the sparkdesk config file.
// Priority: SPARKDESK_CONFIG env var > XDG_CONFIG_HOME/sparkdesk/sparkdesk.yaml > ~/.config/sparkdesk/sparkdesk.yaml
func getConfigPath() string {
	if envPath := os.Getenv("SPARKDESK_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "sparkdesk.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "sparkdesk", "sparkdesk.yaml")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Form URL:  %s\n", cfg.Telegram.ApplyFormURL)
	fmt.Println()

	// Transport
	bot, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.ApplyFormURL, logger)
	if err != nil {
		return fmt.Errorf("creating telegram bot: %w", err)
	}

	// Core engine
	registry := operator.NewRegistry(cfg.Auth.OperatorSecret, logger)

	threads := thread.New(cfg.Threads.TTL, cfg.Threads.MaxEntries)
	defer threads.Close()

	messages := dispatch.DefaultMessages()
	rt := router.New(bot, registry, threads, router.Notices{
		NoOperators: messages.NoOperators,
		ReplyLabel:  messages.ReplyLabel,
	}, logger)

	dispatcher := dispatch.New(bot, rt, registry, formSlots(cfg.Form), messages, logger)

	logger.Info("starting sparkdesk",
		"config", configPath,
		"bot", bot.Username(),
		"thread_ttl", cfg.Threads.TTL,
		"thread_max_entries", cfg.Threads.MaxEntries,
	)

	return bot.Run(ctx, dispatcher)
}

// formSlots applies configured prompt overrides to the default form.
func formSlots(cfg config.FormConfig) []session.Slot {
	slots := session.DefaultSlots()
	for i, slot := range slots {
		if prompt, ok := cfg.Prompts[slot.Key]; ok && prompt != "" {
			slots[i].Prompt = prompt
		}
	}
	return slots
}

// setupLogger creates a slog logger from the logging config.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
