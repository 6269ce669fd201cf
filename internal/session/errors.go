package session

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the chat client core. These are part of the public
// API and should be checked with errors.Is().
//
// Example:
//
//	if err := mgr.Create(ctx, c); errors.Is(err, session.ErrTooFrequent) {
//	    // Ask the user to wait before retrying.
//	}
var (
	// ErrNotAuthenticated indicates an operation that requires an identity
	// was attempted without one.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrTooFrequent indicates a session creation attempt inside the
	// minimum-interval throttle window. No network call was made.
	ErrTooFrequent = errors.New("session creation attempted too soon")

	// ErrRateLimited indicates the server signaled rate limiting.
	// The caller should wait before retrying.
	ErrRateLimited = errors.New("rate limited by server")

	// ErrCreationFailed indicates session creation failed for a reason
	// other than rate limiting.
	ErrCreationFailed = errors.New("session creation failed")

	// ErrNoActiveSession indicates an operation that targets the current
	// session was attempted while no session is current.
	ErrNoActiveSession = errors.New("no active session")

	// ErrTranscriptionFailed indicates speech-to-text yielded no usable
	// transcript. No message was dispatched.
	ErrTranscriptionFailed = errors.New("transcription failed")

	// ErrTransport indicates a generic transport or server failure.
	// Retryable by the caller; the core performs no automatic send retry.
	ErrTransport = errors.New("transport error")

	// ErrValidation indicates caller input was rejected before any
	// network call (empty message content, empty session name).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the requested session does not exist
	// server-side. Surfaced by restore validation.
	ErrNotFound = errors.New("session not found")
)

// rateLimitPatterns are matched case-insensitively against error text.
//
// NOTE: string matching is used because the chat API does not expose a
// machine-readable rate-limit code in all deployments; the human-readable
// message is the only reliable signal. This is a documented exception to
// the project rule against strings.Contains(err.Error(), ...).
var rateLimitPatterns = []string{
	"too many",
	"rate limit",
	"429",
}

// IsRateLimited reports whether err carries a server rate-limit signal.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range rateLimitPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// classify maps a gateway error into the client taxonomy: rate-limit
// signals become ErrRateLimited, everything else wraps fallback.
func classify(err error, fallback error) error {
	if IsRateLimited(err) {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", fallback, err)
}
