package config

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrMissingAPIBaseURL indicates no chat API base URL is configured.
	ErrMissingAPIBaseURL = errors.New("missing API base URL")

	// ErrInvalidAPIBaseURL indicates the configured base URL does not parse.
	ErrInvalidAPIBaseURL = errors.New("invalid API base URL")

	// ErrInvalidLanguage indicates an unsupported preferred language.
	ErrInvalidLanguage = errors.New("invalid language")

	// ErrInvalidThrottle indicates a negative session creation throttle.
	ErrInvalidThrottle = errors.New("invalid session throttle")

	// ErrInvalidFreshness indicates a negative cache freshness window.
	ErrInvalidFreshness = errors.New("invalid cache freshness")

	// ErrInvalidRetryPolicy indicates a nonsensical retry configuration.
	ErrInvalidRetryPolicy = errors.New("invalid retry policy")

	// ErrInvalidPageLimit indicates a page size outside the allowed range.
	ErrInvalidPageLimit = errors.New("invalid page limit")
)

// supportedLanguages matches the catalogs in internal/i18n.
var supportedLanguages = map[string]bool{
	"en": true,
	"tw": true,
	"fr": true,
}

// Validate checks the configuration for values the client cannot work with.
// It does not require an API token: unauthenticated clients can still read
// config, they just cannot create sessions.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return ErrMissingAPIBaseURL
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidAPIBaseURL, c.APIBaseURL)
	}

	if !supportedLanguages[c.Language] {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, c.Language)
	}

	if c.SessionThrottle < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidThrottle, c.SessionThrottle)
	}

	if c.DirectoryFreshness < 0 || c.HistoryFreshness < 0 {
		return fmt.Errorf("%w: directory=%v history=%v",
			ErrInvalidFreshness, c.DirectoryFreshness, c.HistoryFreshness)
	}

	if c.DirectoryRetries < 0 {
		return fmt.Errorf("%w: retries=%d", ErrInvalidRetryPolicy, c.DirectoryRetries)
	}
	if c.RetryBaseInterval <= 0 || c.RetryMaxInterval < c.RetryBaseInterval {
		return fmt.Errorf("%w: base=%v max=%v",
			ErrInvalidRetryPolicy, c.RetryBaseInterval, c.RetryMaxInterval)
	}

	if c.SessionPageLimit < 1 || c.SessionPageLimit > 200 {
		return fmt.Errorf("%w: sessions=%d", ErrInvalidPageLimit, c.SessionPageLimit)
	}
	if c.HistoryPageLimit < 1 || c.HistoryPageLimit > 1000 {
		return fmt.Errorf("%w: history=%d", ErrInvalidPageLimit, c.HistoryPageLimit)
	}

	return nil
}
