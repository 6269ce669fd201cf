// Package gateway implements the authenticated request gateway for the
// chat API: JSON requests with bearer credentials, a single transparent
// token refresh on authentication failure, and classified errors carrying
// the server's human-readable message.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/counsel0/counsel/internal/log"
)

// ErrUnauthorized indicates the request was rejected even after a token refresh.
var ErrUnauthorized = errors.New("unauthorized")

// defaultTimeout bounds a single request round-trip. The core layers no
// application timeout on top of this; it is the transport's own limit.
const defaultTimeout = 30 * time.Second

// APIError is a classified non-2xx response from the chat API.
// Message preserves the server's human-readable text so callers can
// inspect it (rate-limit detection relies on this).
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// TokenSource supplies bearer credentials for API requests.
// Refresh is invoked once when the server rejects the current token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource backed by a fixed token (e.g. from config).
// Refresh returns the same token; a rejected static token stays rejected.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// Refresh implements TokenSource.
func (s StaticToken) Refresh(context.Context) (string, error) { return string(s), nil }

// Client issues authenticated JSON requests against the chat API.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenSource
	logger  log.Logger
}

// New creates a gateway client. baseURL is the API root without a trailing
// slash; tokens may be nil for unauthenticated use.
func New(baseURL string, tokens TokenSource, logger log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
		logger:  logger,
	}
}

// errorResponse is the API's error body shape.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Do issues a JSON request and decodes the response into out (ignored when
// out is nil). Non-2xx responses are returned as *APIError. A 401 triggers
// one token refresh and one retry before failing with ErrUnauthorized.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any) error {
	err := c.do(ctx, method, endpoint, body, out)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return err
	}
	if c.tokens == nil {
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
	}

	if _, refreshErr := c.tokens.Refresh(ctx); refreshErr != nil {
		return fmt.Errorf("%w: refresh failed: %v", ErrUnauthorized, refreshErr)
	}
	c.logger.Debug("token refreshed, retrying request", "endpoint", endpoint)

	err = c.do(ctx, method, endpoint, body, out)
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
	}
	return err
}

// do performs a single round-trip. Every non-2xx becomes an *APIError.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("obtaining token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.classify(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	return nil
}

// classify converts a non-2xx response into an *APIError, preserving the
// server's message when the body parses and falling back to the raw body.
func (c *Client) classify(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}

	var body errorResponse
	if jsonErr := json.Unmarshal(data, &body); jsonErr == nil {
		apiErr.Code = body.Error
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	} else if trimmed := strings.TrimSpace(string(data)); trimmed != "" {
		apiErr.Message = trimmed
	}

	return apiErr
}
