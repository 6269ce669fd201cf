package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/counsel0/counsel/internal/log"
)

// DirectoryConfig configures the session directory cache and its
// initial-fetch retry policy.
type DirectoryConfig struct {
	Freshness    time.Duration // how long a fetched list stays fresh
	Retries      int           // additional attempts after the first failure
	BaseInterval time.Duration // initial backoff interval
	MaxInterval  time.Duration // backoff cap
	PageLimit    int           // sessions per fetch
}

// Directory fetches and caches the list of the user's sessions.
//
// The list is fetched lazily, cached for the freshness window, and
// refreshed on demand. When a refetch fails and a last-known-good list
// exists, the cached list is returned instead of an error.
type Directory struct {
	mu        sync.Mutex
	gw        Gateway
	cfg       DirectoryConfig
	logger    log.Logger
	sessions  []Summary
	fetchedAt time.Time
	warm      bool
	loading   int
}

// NewDirectory creates a session directory backed by gw.
func NewDirectory(gw Gateway, cfg DirectoryConfig, logger log.Logger) *Directory {
	return &Directory{gw: gw, cfg: cfg, logger: logger}
}

// listResponse is the wire shape of GET /chat/sessions.
type listResponse struct {
	Sessions []Summary `json:"sessions"`
}

// List returns the user's sessions, fetching when the cache is cold or
// stale. On fetch failure a warm cache is returned as last-known-good.
func (d *Directory) List(ctx context.Context) ([]Summary, error) {
	d.mu.Lock()
	if d.warm && time.Since(d.fetchedAt) < d.cfg.Freshness {
		cached := copySummaries(d.sessions)
		d.mu.Unlock()
		return cached, nil
	}
	d.mu.Unlock()

	return d.Refetch(ctx)
}

// Refetch forces a fetch regardless of freshness.
func (d *Directory) Refetch(ctx context.Context) ([]Summary, error) {
	d.mu.Lock()
	d.loading++
	d.mu.Unlock()

	fetched, err := d.fetch(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading--

	if err != nil {
		if d.warm {
			d.logger.Warn("session list fetch failed, serving cached list", "error", err)
			return copySummaries(d.sessions), nil
		}
		return nil, err
	}

	d.sessions = fetched
	d.fetchedAt = time.Now()
	d.warm = true
	return copySummaries(d.sessions), nil
}

// MarkStale invalidates the cache so the next List refetches.
func (d *Directory) MarkStale() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetchedAt = time.Time{}
}

// IsLoading reports whether a fetch is in flight.
func (d *Directory) IsLoading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading > 0
}

// fetch retrieves the session list with bounded exponential backoff.
// Backoff is implemented inline rather than with a retry library; the
// loop is small and the policy (base doubling to a cap) is fixed contract.
func (d *Directory) fetch(ctx context.Context) ([]Summary, error) {
	endpoint := fmt.Sprintf("/chat/sessions?page=1&limit=%d&active=true", d.cfg.PageLimit)

	var lastErr error
	delay := d.cfg.BaseInterval

	for attempt := 0; attempt <= d.cfg.Retries; attempt++ {
		var resp listResponse
		err := d.gw.Do(ctx, http.MethodGet, endpoint, nil, &resp)
		if err == nil {
			return resp.Sessions, nil
		}
		lastErr = err

		if attempt == d.cfg.Retries {
			break
		}

		d.logger.Debug("retrying session list fetch",
			"attempt", attempt+1, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrTransport, ctx.Err())
		case <-time.After(delay):
			delay = min(delay*2, d.cfg.MaxInterval)
		}
	}

	return nil, fmt.Errorf("%w: listing sessions: %v", ErrTransport, lastErr)
}

func copySummaries(in []Summary) []Summary {
	out := make([]Summary, len(in))
	copy(out, in)
	return out
}
