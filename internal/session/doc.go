// Package session implements the session-oriented core of the counsel
// chat client: the data model, the durable current-session pointer, the
// cached session directory, the per-session conversation history cache,
// and the lifecycle manager that owns every current-session transition.
//
// The package never talks HTTP directly; it consumes a Gateway capability
// so the core stays testable against an in-process fake server.
//
// Thread safety: all exported types are safe for concurrent use. The
// Manager serializes identity-changing operations; history cache entries
// are keyed by session id so a slow fetch for one session can never
// overwrite another session's view.
package session
