package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// validConfig returns a Config that passes validation, for mutation in tests.
func validConfig() Config {
	cfg := Default()
	cfg.APIBaseURL = "https://api.legalassist.example/v1"
	cfg.StateDir = "/tmp/counsel-test"
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "missing base URL",
			mutate:  func(c *Config) { c.APIBaseURL = "" },
			wantErr: ErrMissingAPIBaseURL,
		},
		{
			name:    "base URL without scheme",
			mutate:  func(c *Config) { c.APIBaseURL = "api.legalassist.example" },
			wantErr: ErrInvalidAPIBaseURL,
		},
		{
			name:    "unsupported language",
			mutate:  func(c *Config) { c.Language = "de" },
			wantErr: ErrInvalidLanguage,
		},
		{
			name:    "negative throttle",
			mutate:  func(c *Config) { c.SessionThrottle = -time.Second },
			wantErr: ErrInvalidThrottle,
		},
		{
			name:    "negative history freshness",
			mutate:  func(c *Config) { c.HistoryFreshness = -time.Second },
			wantErr: ErrInvalidFreshness,
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.DirectoryRetries = -1 },
			wantErr: ErrInvalidRetryPolicy,
		},
		{
			name: "max retry interval below base",
			mutate: func(c *Config) {
				c.RetryBaseInterval = 10 * time.Second
				c.RetryMaxInterval = time.Second
			},
			wantErr: ErrInvalidRetryPolicy,
		},
		{
			name:    "zero session page limit",
			mutate:  func(c *Config) { c.SessionPageLimit = 0 },
			wantErr: ErrInvalidPageLimit,
		},
		{
			name:    "oversized history page limit",
			mutate:  func(c *Config) { c.HistoryPageLimit = 5000 },
			wantErr: ErrInvalidPageLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefault_MatchesContract(t *testing.T) {
	cfg := Default()

	if cfg.SessionThrottle != 2000*time.Millisecond {
		t.Errorf("SessionThrottle = %v, want 2s", cfg.SessionThrottle)
	}
	if cfg.DirectoryFreshness != 2*time.Minute {
		t.Errorf("DirectoryFreshness = %v, want 2m", cfg.DirectoryFreshness)
	}
	if cfg.HistoryFreshness != 30*time.Second {
		t.Errorf("HistoryFreshness = %v, want 30s", cfg.HistoryFreshness)
	}
	if cfg.DirectoryRetries != 2 {
		t.Errorf("DirectoryRetries = %d, want 2", cfg.DirectoryRetries)
	}
}

func TestMarshalJSON_MasksToken(t *testing.T) {
	cfg := validConfig()
	cfg.APIToken = "super-secret-token"

	data, err := cfg.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}

	out := string(data)
	if out == "" {
		t.Fatal("MarshalJSON() returned empty output")
	}
	if strings.Contains(out, "super-secret-token") {
		t.Errorf("MarshalJSON() leaked token: %s", out)
	}
	if !strings.Contains(out, `"api_token":"***"`) {
		t.Errorf("MarshalJSON() missing masked token: %s", out)
	}
}
