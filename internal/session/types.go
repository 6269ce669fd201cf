package session

import (
	"context"
	"time"
)

// Role constants define valid message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxNameLength is the maximum length of a user-assigned session name.
const MaxNameLength = 100

// Context is the structured metadata attached to a session.
type Context struct {
	LegalTopic   string `json:"legalTopic"`
	UserLocation string `json:"userLocation"`
	Resolved     bool   `json:"resolved"`
}

// Summary is the directory record for one conversation session.
// The server owns every field; the client never mutates a Summary locally.
type Summary struct {
	ID           string    `json:"sessionId"`
	Name         string    `json:"name,omitempty"`
	Context      Context   `json:"context"`
	LastAccessed time.Time `json:"lastAccessed"`
	MessageCount int       `json:"messageCount"`
}

// Message is one turn in a conversation. Messages are append-only: they
// are never mutated or deleted individually, only whole-session deletion
// removes them. Metadata is opaque to the core and passed through.
type Message struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp string         `json:"timestamp"`
	AudioURL  string         `json:"audioUrl,omitempty"`
	Language  string         `json:"language,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Gateway issues authenticated requests against the chat API.
// Implemented by internal/gateway; faked in tests.
type Gateway interface {
	Do(ctx context.Context, method, endpoint string, body, out any) error
}

// Identity exposes the authenticated user, if any.
// UserID returns "" when no identity is available.
type Identity interface {
	UserID() string
}

// StaticIdentity is an Identity backed by a fixed user id (e.g. from config).
type StaticIdentity string

// UserID implements Identity.
func (s StaticIdentity) UserID() string { return string(s) }
