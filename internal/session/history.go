package session

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/counsel0/counsel/internal/i18n"
	"github.com/counsel0/counsel/internal/log"
)

// HistoryConfig configures the conversation history cache.
type HistoryConfig struct {
	Freshness time.Duration // how long a fetched transcript stays fresh
	PageLimit int           // messages per fetch
	Language  string        // language of the fallback greeting
}

// HistoryCache fetches and caches conversation transcripts, keyed by
// session id. Keyed entries are the point: a fetch for session A that
// resolves after the user switched to session B writes only under key A
// and can never overwrite B's displayed state.
//
// Read failures degrade instead of erroring: Get falls back to the
// last-known-good transcript, or to a single synthetic assistant greeting
// when nothing was ever fetched. The failure itself is recorded per key
// and exposed through Err, separate from any action error.
type HistoryCache struct {
	mu      sync.Mutex
	gw      Gateway
	cfg     HistoryConfig
	logger  log.Logger
	entries map[string]*historyEntry
}

type historyEntry struct {
	messages  []Message
	context   Context
	fetchedAt time.Time
	warm      bool
	loading   int
	lastErr   error
}

// NewHistoryCache creates a history cache backed by gw.
func NewHistoryCache(gw Gateway, cfg HistoryConfig, logger log.Logger) *HistoryCache {
	return &HistoryCache{
		gw:      gw,
		cfg:     cfg,
		logger:  logger,
		entries: make(map[string]*historyEntry),
	}
}

// historyResponse is the wire shape of GET /chat/sessions/{id}/history.
type historyResponse struct {
	Messages []Message `json:"messages"`
	Context  Context   `json:"context"`
}

// Get returns the transcript and context for id, fetching when the entry
// is cold or stale. The fetch is skipped entirely for an empty id.
// Get never fails: on fetch error it returns last-known-good messages,
// or the synthetic greeting, and records the error for Err(id).
func (c *HistoryCache) Get(ctx context.Context, id string) ([]Message, Context) {
	if id == "" {
		return nil, Context{}
	}

	c.mu.Lock()
	entry := c.entry(id)
	if entry.warm && entry.lastErr == nil && time.Since(entry.fetchedAt) < c.cfg.Freshness {
		messages, sessionCtx := copyMessages(entry.messages), entry.context
		c.mu.Unlock()
		return messages, sessionCtx
	}
	entry.loading++
	c.mu.Unlock()

	endpoint := fmt.Sprintf("/chat/sessions/%s/history?limit=%d&offset=0",
		url.PathEscape(id), c.cfg.PageLimit)

	var resp historyResponse
	err := c.gw.Do(ctx, http.MethodGet, endpoint, nil, &resp)

	// Re-acquire and write strictly under the id captured at call time.
	c.mu.Lock()
	defer c.mu.Unlock()
	entry = c.entry(id)
	entry.loading--

	if err != nil {
		entry.lastErr = fmt.Errorf("%w: loading history: %v", ErrTransport, err)
		c.logger.Warn("history fetch failed", "session_id", id, "error", err)
		if entry.warm {
			return copyMessages(entry.messages), entry.context
		}
		return []Message{c.greeting()}, Context{}
	}

	entry.messages = resp.Messages
	entry.context = resp.Context
	entry.fetchedAt = time.Now()
	entry.warm = true
	entry.lastErr = nil
	return copyMessages(entry.messages), entry.context
}

// Err returns the last read failure recorded for id, nil after a
// successful fetch. Distinct from action errors by design.
func (c *HistoryCache) Err(id string) error {
	if id == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[id]; ok {
		return entry.lastErr
	}
	return nil
}

// Invalidate marks the entry for id stale so the next Get refetches.
// Called after every mutating operation against that session.
func (c *HistoryCache) Invalidate(id string) {
	if id == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[id]; ok {
		entry.fetchedAt = time.Time{}
	}
}

// Evict removes the entry for id entirely. Called on session deletion.
func (c *HistoryCache) Evict(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// IsLoading reports whether a fetch for id is in flight.
func (c *HistoryCache) IsLoading(id string) bool {
	if id == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[id]; ok {
		return entry.loading > 0
	}
	return false
}

// Probe issues a minimal history fetch to confirm the session exists
// server-side. Used by restore validation; does not touch the cache.
func (c *HistoryCache) Probe(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("/chat/sessions/%s/history?limit=1&offset=0", url.PathEscape(id))
	if err := c.gw.Do(ctx, http.MethodGet, endpoint, nil, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return nil
}

// entry returns the entry for id, creating it if needed. Caller holds c.mu.
func (c *HistoryCache) entry(id string) *historyEntry {
	e, ok := c.entries[id]
	if !ok {
		e = &historyEntry{}
		c.entries[id] = e
	}
	return e
}

// greeting builds the fixed, non-personalized fallback assistant message.
func (c *HistoryCache) greeting() Message {
	return Message{
		Role:      RoleAssistant,
		Content:   i18n.Greeting(c.cfg.Language),
		Language:  c.cfg.Language,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func copyMessages(in []Message) []Message {
	out := make([]Message, len(in))
	copy(out, in)
	return out
}
