package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/counsel0/counsel/internal/session"
)

// Bubble Tea messages produced by client commands.
type (
	// clientReadyMsg signals Init completed (err may be non-nil).
	clientReadyMsg struct{ err error }

	// historyMsg carries a freshly fetched transcript. readErr is the
	// history read failure, if any; a transcript is still present (the
	// cache degrades to last-known-good or the greeting).
	historyMsg struct {
		messages []session.Message
		readErr  error
	}

	// sendDoneMsg signals a dispatch finished.
	sendDoneMsg struct{ err error }

	// sessionChangedMsg signals a lifecycle action finished (new, switch,
	// rename, delete).
	sessionChangedMsg struct {
		notice string
		err    error
	}

	// sessionListMsg carries the session directory for /sessions.
	sessionListMsg struct {
		sessions []session.Summary
		err      error
	}
)

// initClient brings the client to a usable state: restore or auto-create,
// then load the transcript.
func (m *Model) initClient() tea.Cmd {
	return func() tea.Msg {
		if err := m.client.Init(m.ctx); err != nil {
			return clientReadyMsg{err: err}
		}
		return clientReadyMsg{}
	}
}

// loadHistory fetches the current session's transcript. Never fails as a
// command; read errors ride along for display.
func (m *Model) loadHistory() tea.Cmd {
	return func() tea.Msg {
		messages, _ := m.client.Messages(m.ctx)
		return historyMsg{messages: messages, readErr: m.client.HistoryErr()}
	}
}

// sendMessage dispatches content against the current session.
func (m *Model) sendMessage(content string) tea.Cmd {
	return func() tea.Msg {
		return sendDoneMsg{err: m.client.SendMessage(m.ctx, content, session.Context{})}
	}
}

// newSession creates a fresh session and makes it current.
func (m *Model) newSession() tea.Cmd {
	return func() tea.Msg {
		if _, err := m.client.NewSession(m.ctx, session.Context{}); err != nil {
			return sessionChangedMsg{err: err}
		}
		return sessionChangedMsg{notice: "tui.notice.new_session"}
	}
}

// renameSession renames the current session.
func (m *Model) renameSession(name string) tea.Cmd {
	return func() tea.Msg {
		if err := m.client.RenameSession(m.ctx, name); err != nil {
			return sessionChangedMsg{err: err}
		}
		return sessionChangedMsg{notice: "tui.notice.renamed"}
	}
}

// deleteSession deletes the current session and starts a fresh one so the
// user always has somewhere to type.
func (m *Model) deleteSession() tea.Cmd {
	return func() tea.Msg {
		if err := m.client.DeleteSession(m.ctx); err != nil {
			return sessionChangedMsg{err: err}
		}
		if err := m.client.Init(m.ctx); err != nil {
			return sessionChangedMsg{err: err}
		}
		return sessionChangedMsg{notice: "tui.notice.deleted"}
	}
}

// listSessions fetches the session directory.
func (m *Model) listSessions() tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.client.RefetchSessions(m.ctx)
		return sessionListMsg{sessions: sessions, err: err}
	}
}

// switchSession makes target current and reloads its transcript.
func (m *Model) switchSession(target string) tea.Cmd {
	m.client.SwitchSession(target)
	return m.loadHistory()
}
