// Package config handles configuration for nlq.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/diogo/nlq/internal/models"
)

// Environment variables that override the config file
const (
	EnvEndpoint  = "NLQ_ENDPOINT"
	EnvLocator   = "NLQ_DB_PATH"
	EnvDialect   = "NLQ_DIALECT"
	EnvMaxTokens = "NLQ_MAX_TOKENS"
	EnvTimeout   = "NLQ_TIMEOUT"
	EnvLogFile   = "NLQ_LOG_FILE"
	EnvConfigDir = "NLQ_CONFIG_DIR"
)

// DefaultTimeoutSeconds bounds every request so nothing stays pending forever
const DefaultTimeoutSeconds = 120

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// Endpoint is the base URL of the query service
	Endpoint string `json:"endpoint"`
	// DefaultLocator prefills the database field in the console
	DefaultLocator string `json:"default_locator,omitempty"`
	Dialect        string `json:"dialect"`
	MaxTokens      int    `json:"max_tokens"`
	// TimeoutSeconds is the per-request deadline.
	TimeoutSeconds     int  `json:"timeout_seconds"`
	InsecureSkipVerify bool `json:"insecure_skip_verify,omitempty"`
	// Verbose enables debug logging to LogFile.
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"` // TUI color theme
	LogFile         string         `json:"log_file,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      false,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:        models.DefaultEndpoint,
		Dialect:         string(models.DefaultDialect),
		MaxTokens:       models.DefaultMaxTokens,
		TimeoutSeconds:  DefaultTimeoutSeconds,
		Verbose:         false,
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path.
// NLQ_CONFIG_DIR overrides the default ~/.nlq.
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(home, ".nlq")
	return configDir, nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Variables already set are never overwritten and missing files
// are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with NLQ_* environment variables
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvEndpoint); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv(EnvLocator); v != "" {
		cfg.DefaultLocator = v
	}
	if v := os.Getenv(EnvDialect); v != "" {
		cfg.Dialect = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv(EnvMaxTokens); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxTokens, v, err)
		}
		cfg.MaxTokens = n
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		cfg.TimeoutSeconds = n
	}
	return nil
}

// Load resolves the effective configuration: defaults, then the config file,
// then .env, then the environment. Flags are applied by the caller.
func Load() (Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return cfg, err
	}
	if err := LoadDotEnv(); err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// settableKeys maps `nlq config set` keys to setters
var settableKeys = map[string]func(*Config, string) error{
	"endpoint": func(c *Config, v string) error {
		c.Endpoint = v
		return nil
	},
	"default_locator": func(c *Config, v string) error {
		c.DefaultLocator = v
		return nil
	},
	"dialect": func(c *Config, v string) error {
		if _, ok := models.DialectFromName(v); !ok {
			return fmt.Errorf("unsupported dialect %q", v)
		}
		c.Dialect = v
		return nil
	},
	"max_tokens": func(c *Config, v string) error {
		return setPositiveInt(&c.MaxTokens, v)
	},
	"timeout_seconds": func(c *Config, v string) error {
		return setPositiveInt(&c.TimeoutSeconds, v)
	},
	"insecure_skip_verify": func(c *Config, v string) error {
		return setBool(&c.InsecureSkipVerify, v)
	},
	"verbose": func(c *Config, v string) error {
		return setBool(&c.Verbose, v)
	},
	"copy_to_clipboard": func(c *Config, v string) error {
		return setBool(&c.CopyToClipboard, v)
	},
	"tui_theme": func(c *Config, v string) error {
		c.TUITheme = v
		return nil
	},
	"log_file": func(c *Config, v string) error {
		c.LogFile = v
		return nil
	},
	"markdown.style": func(c *Config, v string) error {
		c.Markdown.Style = v
		return nil
	},
}

// Keys returns the keys accepted by Set, sorted
func Keys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set updates a single config value by key
func (c *Config) Set(key, value string) error {
	set, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}
	return set(c, strings.TrimSpace(value))
}

func setPositiveInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", v, err)
	}
	if n <= 0 {
		return fmt.Errorf("value must be positive, got %d", n)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid boolean %q: %w", v, err)
	}
	*dst = b
	return nil
}
