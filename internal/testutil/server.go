// Package testutil provides test doubles for the chat client packages,
// most importantly an in-process fake of the chat API so core behavior
// can be exercised over a real HTTP gateway without a live backend.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/counsel0/counsel/internal/session"
)

// sessionRecord is the fake server's state for one session.
type sessionRecord struct {
	summary  session.Summary
	messages []session.Message
}

// Server is an in-process fake of the chat API. Zero value is not usable;
// create with NewServer and Close when done.
//
// Failure injection fields may be set between requests; they are guarded
// by the same mutex as the session state.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	sessions map[string]*sessionRecord

	// Failure injection
	FailHistory   bool   // GET history returns 500
	RateLimit     bool   // POST sessions and query return 429
	FailCreate    bool   // POST sessions returns 500
	Transcript    string // response of POST /nlp/speech-to-text
	AssistantText string // canned assistant reply appended after each query

	// Call counters for asserting network behavior
	CreateCalls  int
	ListCalls    int
	HistoryCalls int
	QueryCalls   int
	UpdateCalls  int
	DeleteCalls  int
}

// NewServer starts the fake chat API.
func NewServer() *Server {
	s := &Server{
		sessions:      make(map[string]*sessionRecord),
		AssistantText: "Thank you for your question. Let me look into that.",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat/sessions", s.createSession)
	mux.HandleFunc("GET /chat/sessions", s.listSessions)
	mux.HandleFunc("PUT /chat/sessions/{id}", s.updateSession)
	mux.HandleFunc("DELETE /chat/sessions/{id}", s.deleteSession)
	mux.HandleFunc("GET /chat/sessions/{id}/history", s.history)
	mux.HandleFunc("POST /chat/query", s.query)
	mux.HandleFunc("POST /chat/feedback", s.feedback)
	mux.HandleFunc("POST /nlp/speech-to-text", s.transcribe)

	s.Server = httptest.NewServer(mux)
	return s
}

// Seed installs a session directly, bypassing the HTTP surface.
// Returns the new session id.
func (s *Server) Seed(name string, c session.Context, messages ...session.Message) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.sessions[id] = &sessionRecord{
		summary: session.Summary{
			ID:           id,
			Name:         name,
			Context:      c,
			LastAccessed: time.Now().UTC(),
			MessageCount: len(messages),
		},
		messages: messages,
	}
	return id
}

// Session returns the stored summary for id and whether it exists.
func (s *Server) Session(id string) (session.Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[id]
	if !ok {
		return session.Summary{}, false
	}
	return rec.summary, true
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CreateCalls++

	if s.RateLimit {
		writeErr(w, http.StatusTooManyRequests, "rate_limited",
			"Too many requests. Please wait before creating another session.")
		return
	}
	if s.FailCreate {
		writeErr(w, http.StatusInternalServerError, "create_failed", "failed to create session")
		return
	}

	var req struct {
		Context session.Context `json:"context"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	id := uuid.NewString()
	s.sessions[id] = &sessionRecord{
		summary: session.Summary{
			ID:           id,
			Context:      req.Context,
			LastAccessed: time.Now().UTC(),
		},
	}

	writeJSON(w, http.StatusOK, map[string]string{"sessionId": id})
}

func (s *Server) listSessions(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++

	summaries := make([]session.Summary, 0, len(s.sessions))
	for _, rec := range s.sessions {
		summaries = append(summaries, rec.summary)
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": summaries})
}

func (s *Server) updateSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdateCalls++

	rec, ok := s.sessions[r.PathValue("id")]
	if !ok {
		writeErr(w, http.StatusNotFound, "not_found", "session not found")
		return
	}

	var req struct {
		Name    *string          `json:"name"`
		Context *session.Context `json:"context"`
		Active  *bool            `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	if req.Name != nil {
		rec.summary.Name = *req.Name
	}
	if req.Context != nil {
		rec.summary.Context = *req.Context
	}
	rec.summary.LastAccessed = time.Now().UTC()

	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeleteCalls++

	id := r.PathValue("id")
	if _, ok := s.sessions[id]; !ok {
		writeErr(w, http.StatusNotFound, "not_found", "session not found")
		return
	}

	var req struct {
		ConfirmDelete bool `json:"confirmDelete"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.ConfirmDelete {
		writeErr(w, http.StatusBadRequest, "confirm_required", "confirmDelete is required")
		return
	}

	delete(s.sessions, id)
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.HistoryCalls++

	if s.FailHistory {
		writeErr(w, http.StatusInternalServerError, "history_failed", "failed to load history")
		return
	}

	rec, ok := s.sessions[r.PathValue("id")]
	if !ok {
		writeErr(w, http.StatusNotFound, "not_found", "session not found")
		return
	}

	rec.summary.LastAccessed = time.Now().UTC()
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": rec.messages,
		"context":  rec.summary.Context,
	})
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.QueryCalls++

	if s.RateLimit {
		writeErr(w, http.StatusTooManyRequests, "rate_limited",
			"Too many requests. Please slow down.")
		return
	}

	var req struct {
		SessionID    string          `json:"sessionId"`
		Content      string          `json:"content"`
		Language     string          `json:"language"`
		Context      session.Context `json:"context"`
		IsVoiceInput bool            `json:"isVoiceInput"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		writeErr(w, http.StatusBadRequest, "invalid_body", "content is required")
		return
	}

	rec, ok := s.sessions[req.SessionID]
	if !ok {
		writeErr(w, http.StatusNotFound, "not_found", "session not found")
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	rec.messages = append(rec.messages,
		session.Message{Role: session.RoleUser, Content: req.Content, Language: req.Language, Timestamp: now},
		session.Message{Role: session.RoleAssistant, Content: s.AssistantText, Language: req.Language, Timestamp: now},
	)
	rec.summary.MessageCount = len(rec.messages)
	rec.summary.LastAccessed = time.Now().UTC()

	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) feedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeErr(w, http.StatusBadRequest, "invalid_body", "sessionId is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) transcribe(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	text := s.Transcript
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
