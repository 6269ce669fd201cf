package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counsel0/counsel/internal/log"
)

func TestDo_JSONRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/sessions", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sessionId":"sess-42"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, StaticToken("token-1"), log.NewNop())

	var out struct {
		SessionID string `json:"sessionId"`
	}
	err := client.Do(context.Background(), http.MethodPost, "/chat/sessions",
		map[string]any{"context": map[string]any{}}, &out)

	require.NoError(t, err)
	assert.Equal(t, "sess-42", out.SessionID)
}

func TestDo_ClassifiesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate_limited","message":"Too many requests, slow down"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, nil, log.NewNop())

	err := client.Do(context.Background(), http.MethodPost, "/chat/query", map[string]string{"content": "hi"}, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, "rate_limited", apiErr.Code)
	assert.Contains(t, apiErr.Message, "Too many requests")
}

func TestDo_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	client := New(srv.URL, nil, log.NewNop())

	err := client.Do(context.Background(), http.MethodGet, "/chat/sessions", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}

// refreshingSource rotates to a second token on Refresh.
type refreshingSource struct {
	refreshed atomic.Bool
}

func (s *refreshingSource) Token(context.Context) (string, error) {
	if s.refreshed.Load() {
		return "token-fresh", nil
	}
	return "token-stale", nil
}

func (s *refreshingSource) Refresh(context.Context) (string, error) {
	s.refreshed.Store(true)
	return "token-fresh", nil
}

func TestDo_RefreshesTokenOn401(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer token-fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized","message":"token expired"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	src := &refreshingSource{}
	client := New(srv.URL, src, log.NewNop())

	err := client.Do(context.Background(), http.MethodGet, "/chat/sessions", nil, nil)

	require.NoError(t, err)
	assert.True(t, src.refreshed.Load(), "expected Refresh to be called")
	assert.Equal(t, int32(2), calls.Load(), "expected exactly one retry")
}

func TestDo_UnauthorizedAfterRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized","message":"account disabled"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, StaticToken("dead-token"), log.NewNop())

	err := client.Do(context.Background(), http.MethodGet, "/chat/sessions", nil, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized), "err = %v, want ErrUnauthorized", err)
}

func TestDo_TransportFailure(t *testing.T) {
	// Point at a closed server to force a connection error.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := New(srv.URL, nil, log.NewNop())

	err := client.Do(context.Background(), http.MethodGet, "/chat/sessions", nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport errors must not be APIErrors")
}
