package session

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/counsel0/counsel/internal/log"
)

// State is the current-session state machine for one client instance.
type State int

// The client oscillates between Active and Sessionless for its lifetime;
// there is no terminal state.
const (
	StateUninitialized State = iota // no identity yet, stored pointer untrusted
	StateValidating                 // stored pointer being checked server-side
	StateActive                     // a validated session is current
	StateSessionless                // no current session
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateValidating:
		return "validating"
	case StateActive:
		return "active"
	case StateSessionless:
		return "sessionless"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Manager is the single authority for session identity transitions:
// create, switch, rename, delete, and restore validation. It owns the
// in-memory current-session id and keeps the PointerStore converged with
// it on every successful lifecycle operation.
type Manager struct {
	mu        sync.Mutex
	gw        Gateway
	identity  Identity
	pointer   PointerStore
	directory *Directory
	history   *HistoryCache
	limiter   *rate.Limiter
	logger    log.Logger

	current string
	state   State
}

// NewManager wires a lifecycle manager. throttle is the minimum interval
// between session creation attempts; zero disables throttling.
func NewManager(
	gw Gateway,
	identity Identity,
	pointer PointerStore,
	directory *Directory,
	history *HistoryCache,
	throttle time.Duration,
	logger log.Logger,
) *Manager {
	limit := rate.Inf
	if throttle > 0 {
		limit = rate.Every(throttle)
	}
	return &Manager{
		gw:        gw,
		identity:  identity,
		pointer:   pointer,
		directory: directory,
		history:   history,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger,
		state:     StateUninitialized,
	}
}

// Current returns the current session id, or "" when sessionless.
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Restore validates a session pointer left by a prior run. A stored
// pointer is never trusted blindly: a minimal history fetch confirms the
// session still exists; on failure the pointer is cleared and the client
// becomes sessionless. Returns the restored id, or "" when no session
// could be restored.
func (m *Manager) Restore(ctx context.Context) (string, error) {
	if m.identity.UserID() == "" {
		return "", ErrNotAuthenticated
	}

	stored, ok := m.pointer.Get()
	if !ok || stored == "" {
		m.setState("", StateSessionless)
		return "", nil
	}

	m.setState("", StateValidating)

	if err := m.history.Probe(ctx, stored); err != nil {
		m.logger.Info("stored session invalid, discarding pointer",
			"session_id", stored, "error", err)
		m.pointer.Clear()
		m.setState("", StateSessionless)
		return "", nil
	}

	m.setState(stored, StateActive)
	m.logger.Debug("restored existing session", "session_id", stored)
	return stored, nil
}

// createResponse is the wire shape of POST /chat/sessions.
type createResponse struct {
	SessionID string `json:"sessionId"`
}

// Create starts a new session with the given context and makes it
// current. Requires an authenticated identity and respects the creation
// throttle: attempts inside the minimum interval reject with
// ErrTooFrequent before any network call. On failure the current session
// id is left untouched.
func (m *Manager) Create(ctx context.Context, c Context) (string, error) {
	if m.identity.UserID() == "" {
		return "", ErrNotAuthenticated
	}
	if !m.limiter.Allow() {
		return "", ErrTooFrequent
	}

	var resp createResponse
	err := m.gw.Do(ctx, http.MethodPost, "/chat/sessions",
		map[string]any{"context": c}, &resp)
	if err != nil {
		return "", classify(err, ErrCreationFailed)
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("%w: server returned no session id", ErrCreationFailed)
	}

	m.setState(resp.SessionID, StateActive)
	m.pointer.Set(resp.SessionID)
	m.directory.MarkStale()
	m.logger.Info("created session", "session_id", resp.SessionID)
	return resp.SessionID, nil
}

// Switch makes target the current session. Pure-local by design: history
// is fetched lazily keyed by id, so no network round-trip is needed and
// the pointer store reflects the switch immediately. A switch to the
// already-current session is a no-op.
func (m *Manager) Switch(target string) {
	if target == "" {
		return
	}

	m.mu.Lock()
	if target == m.current {
		m.mu.Unlock()
		return
	}
	m.current = target
	m.state = StateActive
	m.mu.Unlock()

	m.pointer.Set(target)
	m.logger.Debug("switched session", "session_id", target)
}

// Rename sets the user-assigned name of the current session.
// The name must be non-empty after trimming and at most MaxNameLength
// characters; violations reject before any network call.
func (m *Manager) Rename(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: session name is empty", ErrValidation)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: session name exceeds %d characters", ErrValidation, MaxNameLength)
	}

	id := m.Current()
	if id == "" {
		return ErrNoActiveSession
	}

	err := m.gw.Do(ctx, http.MethodPut, "/chat/sessions/"+url.PathEscape(id),
		map[string]any{"name": name}, nil)
	if err != nil {
		return classify(err, ErrTransport)
	}

	m.directory.MarkStale()
	m.history.Invalidate(id)
	return nil
}

// UpdateContext updates the structured context (and active flag) of the
// current session.
func (m *Manager) UpdateContext(ctx context.Context, c Context, active bool) error {
	id := m.Current()
	if id == "" {
		return ErrNoActiveSession
	}

	err := m.gw.Do(ctx, http.MethodPut, "/chat/sessions/"+url.PathEscape(id),
		map[string]any{"context": c, "active": active}, nil)
	if err != nil {
		return classify(err, ErrTransport)
	}

	m.directory.MarkStale()
	m.history.Invalidate(id)
	return nil
}

// Delete deletes the current session server-side. On success the current
// id is cleared from memory and the pointer store, the session's history
// entry is evicted, and the directory is marked stale. Deleting a session
// that is not current requires switching to it first; that two-step
// protocol is part of the external contract.
func (m *Manager) Delete(ctx context.Context) error {
	id := m.Current()
	if id == "" {
		return ErrNoActiveSession
	}

	err := m.gw.Do(ctx, http.MethodDelete, "/chat/sessions/"+url.PathEscape(id),
		map[string]any{"confirmDelete": true}, nil)
	if err != nil {
		return classify(err, ErrTransport)
	}

	m.setState("", StateSessionless)
	m.pointer.Clear()
	m.history.Evict(id)
	m.directory.MarkStale()
	m.logger.Info("deleted session", "session_id", id)
	return nil
}

func (m *Manager) setState(current string, state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = current
	m.state = state
}
