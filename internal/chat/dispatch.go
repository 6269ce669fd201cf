package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/counsel0/counsel/internal/log"
	"github.com/counsel0/counsel/internal/session"
)

// Transcriber converts captured audio to text.
// Implemented by internal/speech; faked in tests.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

// Dispatcher sends messages against a session and invalidates that
// session's cached history so subsequent reads reflect the new turn.
//
// Sends are not auto-retried: a send is not idempotent-safe to repeat
// without de-duplication, which this client does not implement. The
// IsSending flag is cooperative - callers are expected to disable input
// while it is set, concurrent sends are not serialized here.
type Dispatcher struct {
	gw          session.Gateway
	history     *session.HistoryCache
	transcriber Transcriber
	language    string
	logger      log.Logger
	sending     atomic.Int32
}

// NewDispatcher creates a message dispatcher. transcriber may be nil when
// voice input is not available.
func NewDispatcher(
	gw session.Gateway,
	history *session.HistoryCache,
	transcriber Transcriber,
	language string,
	logger log.Logger,
) *Dispatcher {
	return &Dispatcher{
		gw:          gw,
		history:     history,
		transcriber: transcriber,
		language:    language,
		logger:      logger,
	}
}

// Send dispatches a text message against sessionID. Content that is empty
// after trimming rejects with ErrValidation before any network call.
func (d *Dispatcher) Send(ctx context.Context, sessionID, content string, msgCtx session.Context) error {
	return d.send(ctx, sessionID, content, msgCtx, false)
}

// SendVoice transcribes audio and dispatches the transcript as a message
// marked voice-originated. A transcription that yields no text fails with
// ErrTranscriptionFailed without attempting a send.
func (d *Dispatcher) SendVoice(ctx context.Context, sessionID string, audio []byte, msgCtx session.Context) error {
	if d.transcriber == nil {
		return fmt.Errorf("%w: no transcriber configured", session.ErrTranscriptionFailed)
	}

	text, err := d.transcriber.Transcribe(ctx, audio, d.language)
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrTranscriptionFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: no speech recognized", session.ErrTranscriptionFailed)
	}

	return d.send(ctx, sessionID, text, msgCtx, true)
}

// queryRequest is the wire shape of POST /chat/query.
type queryRequest struct {
	SessionID    string          `json:"sessionId"`
	Content      string          `json:"content"`
	Language     string          `json:"language"`
	Context      session.Context `json:"context"`
	IsVoiceInput bool            `json:"isVoiceInput"`
}

func (d *Dispatcher) send(ctx context.Context, sessionID, content string, msgCtx session.Context, voice bool) error {
	if sessionID == "" {
		return session.ErrNoActiveSession
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("%w: message content is empty", session.ErrValidation)
	}

	d.sending.Add(1)
	defer d.sending.Add(-1)

	req := queryRequest{
		SessionID:    sessionID,
		Content:      content,
		Language:     d.language,
		Context:      msgCtx,
		IsVoiceInput: voice,
	}
	if err := d.gw.Do(ctx, http.MethodPost, "/chat/query", req, nil); err != nil {
		return classifySend(err)
	}

	// Invalidation is scoped to the id captured when the call was issued,
	// not whatever session is current when the response arrives.
	d.history.Invalidate(sessionID)
	d.logger.Debug("message dispatched", "session_id", sessionID, "voice", voice)
	return nil
}

// feedbackRequest is the wire shape of POST /chat/feedback.
type feedbackRequest struct {
	SessionID    string `json:"sessionId"`
	MessageIndex int    `json:"messageIndex"`
	Rating       int    `json:"rating"`
	Feedback     string `json:"feedback"`
	Helpful      bool   `json:"helpful"`
}

// SubmitFeedback records user feedback for a message of sessionID.
func (d *Dispatcher) SubmitFeedback(ctx context.Context, sessionID string, messageIndex, rating int, feedback string, helpful bool) error {
	if sessionID == "" {
		return session.ErrNoActiveSession
	}

	req := feedbackRequest{
		SessionID:    sessionID,
		MessageIndex: messageIndex,
		Rating:       rating,
		Feedback:     feedback,
		Helpful:      helpful,
	}
	if err := d.gw.Do(ctx, http.MethodPost, "/chat/feedback", req, nil); err != nil {
		return classifySend(err)
	}
	return nil
}

// IsSending reports whether any send is in flight.
func (d *Dispatcher) IsSending() bool {
	return d.sending.Load() > 0
}

// classifySend maps gateway errors to the send-path taxonomy.
func classifySend(err error) error {
	if session.IsRateLimited(err) {
		return fmt.Errorf("%w: %v", session.ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", session.ErrTransport, err)
}
