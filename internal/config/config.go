// Package config provides client configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (COUNSEL_* runtime override)
//  2. Config file (~/.counsel/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - API: base URL, token, user identity
//   - Chat: preferred language, page sizes
//   - Caching: directory/history freshness windows, retry policy
//   - State: local state directory for the current-session pointer
//
// Security: the API token is never logged; MarshalJSON masks it.
// Error handling uses sentinel errors checked with errors.Is().
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Defaults for the chat client core. The throttle and freshness values are
// part of the client's external contract, not tuning knobs: the server
// rate-limits session creation, and the caches exist to keep reads cheap
// without hiding mutations.
const (
	// DefaultSessionThrottle is the minimum interval between session
	// creation attempts from one client instance.
	DefaultSessionThrottle = 2000 * time.Millisecond

	// DefaultDirectoryFreshness is how long a fetched session list stays fresh.
	DefaultDirectoryFreshness = 2 * time.Minute

	// DefaultHistoryFreshness is how long fetched conversation history stays fresh.
	DefaultHistoryFreshness = 30 * time.Second

	// DefaultDirectoryRetries bounds retry attempts for the session list fetch.
	DefaultDirectoryRetries = 2

	// DefaultRetryBaseInterval is the initial backoff interval for retries.
	DefaultRetryBaseInterval = 1 * time.Second

	// DefaultRetryMaxInterval caps the backoff interval for retries.
	DefaultRetryMaxInterval = 30 * time.Second

	// DefaultSessionPageLimit is the page size for session list fetches.
	DefaultSessionPageLimit = 20

	// DefaultHistoryPageLimit is the page size for history fetches.
	DefaultHistoryPageLimit = 50
)

// configDirName is the directory under $HOME holding config and local state.
const configDirName = ".counsel"

// Config stores client configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
type Config struct {
	// API connection
	APIBaseURL string `mapstructure:"api_base_url" json:"api_base_url"`
	APIToken   string `mapstructure:"api_token" json:"api_token"` // SENSITIVE: masked in MarshalJSON
	UserID     string `mapstructure:"user_id" json:"user_id"`

	// Chat preferences
	Language string `mapstructure:"language" json:"language"`

	// Local state (current-session pointer database)
	StateDir string `mapstructure:"state_dir" json:"state_dir"`

	// Session creation throttle
	SessionThrottle time.Duration `mapstructure:"session_throttle" json:"session_throttle"`

	// Cache freshness windows
	DirectoryFreshness time.Duration `mapstructure:"directory_freshness" json:"directory_freshness"`
	HistoryFreshness   time.Duration `mapstructure:"history_freshness" json:"history_freshness"`

	// Retry policy for the session list fetch
	DirectoryRetries  int           `mapstructure:"directory_retries" json:"directory_retries"`
	RetryBaseInterval time.Duration `mapstructure:"retry_base_interval" json:"retry_base_interval"`
	RetryMaxInterval  time.Duration `mapstructure:"retry_max_interval" json:"retry_max_interval"`

	// Page sizes
	SessionPageLimit int `mapstructure:"session_page_limit" json:"session_page_limit"`
	HistoryPageLimit int `mapstructure:"history_page_limit" json:"history_page_limit"`
}

// MarshalJSON masks sensitive fields so the config can be logged safely.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	masked := alias(c)
	if masked.APIToken != "" {
		masked.APIToken = "***"
	}
	return json.Marshal(masked)
}

// Default returns a Config populated with defaults.
// StateDir is left empty; Load resolves it against the home directory.
func Default() Config {
	return Config{
		Language:           "en",
		SessionThrottle:    DefaultSessionThrottle,
		DirectoryFreshness: DefaultDirectoryFreshness,
		HistoryFreshness:   DefaultHistoryFreshness,
		DirectoryRetries:   DefaultDirectoryRetries,
		RetryBaseInterval:  DefaultRetryBaseInterval,
		RetryMaxInterval:   DefaultRetryMaxInterval,
		SessionPageLimit:   DefaultSessionPageLimit,
		HistoryPageLimit:   DefaultHistoryPageLimit,
	}
}

// Load reads configuration from file, environment, and defaults.
// A missing config file is not an error; env and defaults still apply.
func Load() (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("api_base_url", "")
	v.SetDefault("api_token", "")
	v.SetDefault("user_id", "")
	v.SetDefault("language", def.Language)
	v.SetDefault("state_dir", "")
	v.SetDefault("session_throttle", def.SessionThrottle)
	v.SetDefault("directory_freshness", def.DirectoryFreshness)
	v.SetDefault("history_freshness", def.HistoryFreshness)
	v.SetDefault("directory_retries", def.DirectoryRetries)
	v.SetDefault("retry_base_interval", def.RetryBaseInterval)
	v.SetDefault("retry_max_interval", def.RetryMaxInterval)
	v.SetDefault("session_page_limit", def.SessionPageLimit)
	v.SetDefault("history_page_limit", def.HistoryPageLimit)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, configDirName))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("COUNSEL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.StateDir = filepath.Join(home, configDirName)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
