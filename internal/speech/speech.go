// Package speech provides the speech-to-text capability consumed by the
// message dispatcher. The actual recognition runs server-side; this
// client uploads captured audio and returns the transcript.
package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/counsel0/counsel/internal/log"
	"github.com/counsel0/counsel/internal/session"
)

// Client transcribes audio through the chat API's NLP endpoint.
type Client struct {
	gw     session.Gateway
	logger log.Logger
}

// New creates a speech client backed by gw.
func New(gw session.Gateway, logger log.Logger) *Client {
	return &Client{gw: gw, logger: logger}
}

// transcribeResponse is the wire shape of POST /nlp/speech-to-text.
type transcribeResponse struct {
	Text string `json:"text"`
}

// Transcribe converts captured audio to text in the given language.
// Returns the transcript, which may be empty when nothing was recognized;
// the caller decides whether an empty transcript is an error.
func (c *Client) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio input")
	}

	body := map[string]string{
		"audio":    base64.StdEncoding.EncodeToString(audio),
		"language": language,
	}

	var resp transcribeResponse
	if err := c.gw.Do(ctx, http.MethodPost, "/nlp/speech-to-text", body, &resp); err != nil {
		return "", fmt.Errorf("speech-to-text request: %w", err)
	}

	c.logger.Debug("audio transcribed", "language", language, "chars", len(resp.Text))
	return resp.Text, nil
}
