package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/counsel0/counsel/internal/i18n"
	"github.com/counsel0/counsel/internal/session"
)

// View implements tea.Model.
// Uses AltScreen with viewport for scrollable transcript history.
func (m *Model) View() tea.View {
	m.viewBuf.Reset()

	// Viewport (scrollable transcript area)
	_, _ = m.viewBuf.WriteString(m.viewport.View())
	_, _ = m.viewBuf.WriteString("\n")

	// Separator line above input
	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	// Input prompt - always show and always accept input
	_, _ = m.viewBuf.WriteString(m.styles.Prompt.Render("> "))
	_, _ = m.viewBuf.WriteString(m.input.View())
	_, _ = m.viewBuf.WriteString("\n")

	// Separator line below input
	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	// Help bar (keyboard shortcuts)
	_, _ = m.viewBuf.WriteString(m.renderStatusBar())

	v := tea.NewView(m.viewBuf.String())
	v.AltScreen = true
	return v
}

// rebuildViewportContent reconstructs the viewport content from messages
// and state. Called when messages or state change.
func (m *Model) rebuildViewportContent() {
	var b strings.Builder

	_, _ = b.WriteString(m.styles.RenderBanner())
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(m.styles.RenderWelcomeTips())
	_, _ = b.WriteString("\n")

	for _, msg := range m.messages {
		switch msg.Role {
		case session.RoleUser:
			_, _ = b.WriteString(m.styles.User.Render(i18n.T("tui.label.you") + "> "))
			_, _ = b.WriteString(msg.Text)
		case session.RoleAssistant:
			_, _ = b.WriteString(m.styles.Assistant.Render("Counsel> "))
			_, _ = b.WriteString(msg.Text)
		case roleSystem:
			_, _ = b.WriteString(m.styles.System.Render(msg.Text))
		case roleError:
			_, _ = b.WriteString(m.styles.Error.Render(i18n.T("tui.label.error") + ": " + msg.Text))
		}
		_, _ = b.WriteString("\n\n")
	}

	switch m.state {
	case StateSending:
		_, _ = b.WriteString(m.spinner.View())
		_, _ = b.WriteString(" " + i18n.T("tui.status.sending") + "\n\n")
	case StateLoading:
		_, _ = b.WriteString(m.spinner.View())
		_, _ = b.WriteString(" " + i18n.T("tui.status.loading") + "\n\n")
	}

	m.viewport.SetContent(b.String())
}

// renderSeparator returns a horizontal line separator.
func (m *Model) renderSeparator() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	return m.styles.Separator.Render(strings.Repeat("─", width))
}

// renderStatusBar returns state-appropriate keyboard shortcut help.
func (m *Model) renderStatusBar() string {
	var bindings []key.Binding
	switch m.state {
	case StateInput:
		bindings = []key.Binding{
			m.keys.Submit, m.keys.NewLine, m.keys.History,
			m.keys.Cancel, m.keys.Quit, m.keys.ScrollUp,
		}
	case StateSending, StateLoading:
		bindings = []key.Binding{
			m.keys.Cancel, m.keys.Quit,
			m.keys.ScrollUp, m.keys.ScrollDown,
		}
	}
	return m.help.ShortHelpView(bindings)
}

// renderSessionList formats the session directory for display, marking
// the current session.
func renderSessionList(sessions []session.Summary, current string) string {
	if len(sessions) == 0 {
		return i18n.T("tui.notice.no_sessions")
	}

	var b strings.Builder
	_, _ = b.WriteString(i18n.T("tui.label.sessions") + "\n")
	for _, s := range sessions {
		marker := " "
		if s.ID == current {
			marker = "*"
		}
		name := s.Name
		if name == "" {
			name = i18n.T("tui.label.unnamed")
		}
		_, _ = b.WriteString(fmt.Sprintf("  %s %s  %s (%d)\n", marker, s.ID, name, s.MessageCount))
	}
	return strings.TrimRight(b.String(), "\n")
}
