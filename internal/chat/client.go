// Package chat provides the unified chat client: the facade a consuming
// UI talks to, composing the session lifecycle manager, session
// directory, history cache, and message dispatcher.
package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/counsel0/counsel/internal/config"
	"github.com/counsel0/counsel/internal/log"
	"github.com/counsel0/counsel/internal/session"
)

// Options carries the capabilities the client composes. Gateway,
// Identity, and Pointer are required; Transcriber is optional (voice
// input disabled when nil).
type Options struct {
	Gateway     session.Gateway
	Identity    session.Identity
	Pointer     session.PointerStore
	Transcriber Transcriber
	Config      config.Config
}

// Client is the chat client facade. It exposes session state, messages,
// loading flags, and action methods to a consuming UI, and maintains a
// single action-error channel (read-path history errors are separate).
//
// All methods are safe for concurrent use. Session-identity-changing
// operations are serialized by the lifecycle manager; sends are
// deliberately not serialized (cooperative IsSending flag instead).
type Client struct {
	mu          sync.Mutex
	initMu      sync.Mutex // serializes Init so the latch cannot race
	manager     *session.Manager
	directory   *session.Directory
	history     *session.HistoryCache
	dispatcher  *Dispatcher
	identity    session.Identity
	logger      log.Logger
	lastErr     error
	initialized bool
	creating    bool
}

// NewClient wires a chat client from its capabilities.
func NewClient(opts Options, logger log.Logger) (*Client, error) {
	if opts.Gateway == nil {
		return nil, errors.New("chat.NewClient: gateway is required")
	}
	if opts.Identity == nil {
		return nil, errors.New("chat.NewClient: identity is required")
	}
	if opts.Pointer == nil {
		return nil, errors.New("chat.NewClient: pointer store is required")
	}

	cfg := opts.Config

	directory := session.NewDirectory(opts.Gateway, session.DirectoryConfig{
		Freshness:    cfg.DirectoryFreshness,
		Retries:      cfg.DirectoryRetries,
		BaseInterval: cfg.RetryBaseInterval,
		MaxInterval:  cfg.RetryMaxInterval,
		PageLimit:    cfg.SessionPageLimit,
	}, logger.With("component", "directory"))

	history := session.NewHistoryCache(opts.Gateway, session.HistoryConfig{
		Freshness: cfg.HistoryFreshness,
		PageLimit: cfg.HistoryPageLimit,
		Language:  cfg.Language,
	}, logger.With("component", "history"))

	manager := session.NewManager(
		opts.Gateway, opts.Identity, opts.Pointer,
		directory, history,
		cfg.SessionThrottle,
		logger.With("component", "lifecycle"),
	)

	dispatcher := NewDispatcher(
		opts.Gateway, history, opts.Transcriber,
		cfg.Language,
		logger.With("component", "dispatcher"),
	)

	return &Client{
		manager:    manager,
		directory:  directory,
		history:    history,
		dispatcher: dispatcher,
		identity:   opts.Identity,
		logger:     logger,
	}, nil
}

// Init brings the client to a usable state: it validates any session
// pointer stored by a prior run and, when the client turns out to be
// sessionless, creates a session automatically - exactly once, guarded by
// the creation throttle and an initialized latch so repeated calls cannot
// race duplicate creations.
func (c *Client) Init(ctx context.Context) error {
	// Held across restore and auto-create: the throttle alone is not a
	// guard, a zero-throttle config would let concurrent callers race
	// past the latch and create duplicate sessions.
	c.initMu.Lock()
	defer c.initMu.Unlock()

	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if c.identity.UserID() == "" {
		return session.ErrNotAuthenticated
	}

	restored, err := c.manager.Restore(ctx)
	if err != nil {
		c.recordErr(err)
		return err
	}
	if restored != "" {
		c.setInitialized()
		return nil
	}

	if _, err := c.createSession(ctx, session.Context{}); err != nil {
		return err
	}
	c.setInitialized()
	return nil
}

// RetryCreateSession retries a failed automatic session creation.
// Same throttle guard as NewSession; explicit rather than relying on the
// consumer re-invoking initialization.
func (c *Client) RetryCreateSession(ctx context.Context) error {
	_, err := c.createSession(ctx, session.Context{})
	if err == nil {
		c.setInitialized()
	}
	return err
}

// NewSession creates a session with the given context and makes it current.
func (c *Client) NewSession(ctx context.Context, sessionCtx session.Context) (string, error) {
	id, err := c.createSession(ctx, sessionCtx)
	if err == nil {
		c.setInitialized()
	}
	return id, err
}

func (c *Client) createSession(ctx context.Context, sessionCtx session.Context) (string, error) {
	c.mu.Lock()
	c.creating = true
	c.mu.Unlock()

	id, err := c.manager.Create(ctx, sessionCtx)

	c.mu.Lock()
	c.creating = false
	if err != nil {
		c.lastErr = err
	} else {
		c.lastErr = nil
	}
	c.mu.Unlock()

	return id, err
}

// CurrentSessionID returns the current session id, or "" when sessionless.
func (c *Client) CurrentSessionID() string {
	return c.manager.Current()
}

// SessionState returns the lifecycle state of the current session.
func (c *Client) SessionState() session.State {
	return c.manager.State()
}

// Sessions returns the user's session directory, cached per config.
func (c *Client) Sessions(ctx context.Context) ([]session.Summary, error) {
	return c.directory.List(ctx)
}

// RefetchSessions forces a directory refresh.
func (c *Client) RefetchSessions(ctx context.Context) ([]session.Summary, error) {
	return c.directory.Refetch(ctx)
}

// Messages returns the transcript and context of the current session.
// Never fails: read errors degrade to a synthetic greeting and are
// reported through HistoryErr.
func (c *Client) Messages(ctx context.Context) ([]session.Message, session.Context) {
	return c.history.Get(ctx, c.manager.Current())
}

// HistoryErr returns the last read failure for the current session's
// history, nil after a successful fetch. Separate from Err by contract.
func (c *Client) HistoryErr() error {
	return c.history.Err(c.manager.Current())
}

// SendMessage dispatches a text message against the current session.
func (c *Client) SendMessage(ctx context.Context, content string, msgCtx session.Context) error {
	err := c.dispatcher.Send(ctx, c.manager.Current(), content, msgCtx)
	c.recordOutcome(err)
	return err
}

// SendVoiceMessage transcribes audio and dispatches the transcript.
func (c *Client) SendVoiceMessage(ctx context.Context, audio []byte, msgCtx session.Context) error {
	err := c.dispatcher.SendVoice(ctx, c.manager.Current(), audio, msgCtx)
	c.recordOutcome(err)
	return err
}

// SubmitFeedback records feedback for a message of the current session.
func (c *Client) SubmitFeedback(ctx context.Context, messageIndex, rating int, feedback string, helpful bool) error {
	err := c.dispatcher.SubmitFeedback(ctx, c.manager.Current(), messageIndex, rating, feedback, helpful)
	c.recordOutcome(err)
	return err
}

// SwitchSession makes target the current session. Pure-local; clears the
// action error like any successful session action.
func (c *Client) SwitchSession(target string) {
	c.manager.Switch(target)
	c.recordOutcome(nil)
}

// RenameSession renames the current session.
func (c *Client) RenameSession(ctx context.Context, name string) error {
	err := c.manager.Rename(ctx, name)
	c.recordOutcome(err)
	return err
}

// UpdateSessionContext updates the current session's structured context.
func (c *Client) UpdateSessionContext(ctx context.Context, sessionCtx session.Context, active bool) error {
	err := c.manager.UpdateContext(ctx, sessionCtx, active)
	c.recordOutcome(err)
	return err
}

// DeleteSession deletes the current session. On success the client
// becomes sessionless and a later Init or NewSession starts fresh.
func (c *Client) DeleteSession(ctx context.Context) error {
	err := c.manager.Delete(ctx)
	c.recordOutcome(err)
	if err == nil {
		// Allow a subsequent Init to auto-create again.
		c.mu.Lock()
		c.initialized = false
		c.mu.Unlock()
	}
	return err
}

// IsSending reports whether a send is in flight.
func (c *Client) IsSending() bool {
	return c.dispatcher.IsSending()
}

// IsLoading reports whether session creation, a send, or a history fetch
// for the current session is in flight.
func (c *Client) IsLoading() bool {
	c.mu.Lock()
	creating := c.creating
	c.mu.Unlock()
	return creating || c.dispatcher.IsSending() || c.history.IsLoading(c.manager.Current())
}

// Err returns the last action error. Each new action overwrites it;
// successful actions clear it.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearErr explicitly clears the action error.
func (c *Client) ClearErr() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil
}

func (c *Client) recordErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
}

// recordOutcome overwrites the action error channel with the latest
// result: failures replace the previous error, successes clear it.
func (c *Client) recordOutcome(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
}

func (c *Client) setInitialized() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = true
}
