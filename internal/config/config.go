// Package config handles configuration for ayurchat.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/diogo/ayurchat/internal/models"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style" env:"AYURCHAT_MARKDOWN_STYLE"` // "auto", "dark", "light", "dracula", "notty", "ascii" or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`                        // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`                   // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`                          // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"`                  // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// BaseURL is the scheme and host of the chat backend.
	BaseURL    string `json:"base_url" env:"AYURCHAT_BASE_URL"`
	IndexPath  string `json:"index_path" env:"AYURCHAT_INDEX_PATH"`
	ChatPath   string `json:"chat_path" env:"AYURCHAT_CHAT_PATH"`
	LoginPath  string `json:"login_path" env:"AYURCHAT_LOGIN_PATH"`
	LogoutPath string `json:"logout_path" env:"AYURCHAT_LOGOUT_PATH"`

	CSRFCookieName string `json:"csrf_cookie_name" env:"AYURCHAT_CSRF_COOKIE"`
	CSRFHeaderName string `json:"csrf_header_name" env:"AYURCHAT_CSRF_HEADER"`

	// TimeoutSeconds bounds each request. 0 leaves requests unbounded.
	TimeoutSeconds int `json:"timeout_seconds" env:"AYURCHAT_TIMEOUT_SECONDS"`

	Verbose         bool           `json:"verbose" env:"AYURCHAT_VERBOSE"`
	CopyToClipboard bool           `json:"copy_to_clipboard" env:"AYURCHAT_COPY_TO_CLIPBOARD"`
	TUITheme        string         `json:"tui_theme,omitempty" env:"AYURCHAT_TUI_THEME"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:        models.DefaultBaseURL,
		IndexPath:      models.DefaultIndexPath,
		ChatPath:       models.DefaultChatPath,
		LoginPath:      models.DefaultLoginPath,
		LogoutPath:     models.DefaultLogoutPath,
		CSRFCookieName: models.DefaultCSRFCookie,
		CSRFHeaderName: models.DefaultCSRFHeader,
		TimeoutSeconds: 0,
		Verbose:        false,
		TUITheme:       "tokyonight",
		Markdown:       DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".ayurchat"), nil
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

// GetLogPath returns the path of the log file used while the TUI owns the terminal
func GetLogPath() (string, error) {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "ayurchat.log"), nil
}

// LoadDotEnv loads a .env file from the working directory if one exists.
// Variables already set in the environment win.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// LoadConfig loads the configuration from disk and applies AYURCHAT_* overrides
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
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

// SettableKeys lists the keys accepted by Set.
func SettableKeys() []string {
	return []string{"base_url", "tui_theme", "markdown_style", "copy_to_clipboard", "verbose", "timeout_seconds"}
}

// Set updates a single configuration key from its string form
func (c *Config) Set(key, value string) error {
	switch key {
	case "base_url":
		u, err := url.Parse(strings.TrimRight(value, "/"))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("base_url must look like http(s)://host[:port][/prefix]")
		}
		if u.RawQuery != "" || u.Fragment != "" {
			return fmt.Errorf("base_url must not carry a query or fragment")
		}
		c.BaseURL = u.String()
	case "tui_theme":
		c.TUITheme = value
	case "markdown_style":
		c.Markdown.Style = value
	case "copy_to_clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q", key, value)
		}
		c.CopyToClipboard = b
	case "verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q", key, value)
		}
		c.Verbose = b
	case "timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("timeout_seconds must be a non-negative integer")
		}
		c.TimeoutSeconds = n
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(SettableKeys(), ", "))
	}
	return nil
}
