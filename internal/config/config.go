// ABOUTME: Configuration loading and parsing for sparkdesk
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file leaves fields unset.
const (
	DefaultApplyFormURL     = "https://example.com/apply"
	DefaultThreadTTL        = 72 * time.Hour
	DefaultThreadMaxEntries = 4096
)

// Config represents the complete sparkdesk configuration
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Auth     AuthConfig     `yaml:"auth"`
	Threads  ThreadsConfig  `yaml:"threads"`
	Form     FormConfig     `yaml:"form"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TelegramConfig holds bot transport configuration
type TelegramConfig struct {
	Token        string `yaml:"token"`
	ApplyFormURL string `yaml:"apply_form_url"`
}

// AuthConfig holds operator registration configuration
type AuthConfig struct {
	// OperatorSecret gates /register. Compared exactly, case-sensitive.
	OperatorSecret string `yaml:"operator_secret"`
}

// ThreadsConfig bounds the contact thread table
type ThreadsConfig struct {
	TTL        time.Duration `yaml:"-"`
	MaxEntries int           `yaml:"max_entries"`

	// Raw string value for YAML unmarshaling
	TTLRaw string `yaml:"ttl"`
}

// FormConfig allows overriding the built-in slot prompts by slot key.
// The slot order itself is fixed.
type FormConfig struct {
	Prompts map[string]string `yaml:"prompts"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in unset optional fields.
func (c *Config) applyDefaults() {
	if c.Telegram.ApplyFormURL == "" {
		c.Telegram.ApplyFormURL = DefaultApplyFormURL
	}
	if c.Threads.TTL == 0 {
		c.Threads.TTL = DefaultThreadTTL
	}
	if c.Threads.MaxEntries == 0 {
		c.Threads.MaxEntries = DefaultThreadMaxEntries
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required (set TELEGRAM_BOT_TOKEN and reference it as ${TELEGRAM_BOT_TOKEN})")
	}

	if c.Auth.OperatorSecret == "" {
		return fmt.Errorf("auth.operator_secret is required")
	}

	if c.Threads.TTL < 0 {
		return fmt.Errorf("threads.ttl must not be negative")
	}
	if c.Threads.MaxEntries < 0 {
		return fmt.Errorf("threads.max_entries must not be negative")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Threads.TTLRaw != "" {
		cfg.Threads.TTL, err = time.ParseDuration(cfg.Threads.TTLRaw)
		if err != nil {
			return fmt.Errorf("parsing threads.ttl %q: %w", cfg.Threads.TTLRaw, err)
		}
	}

	return nil
}
