package tui

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/counsel0/counsel/internal/i18n"
)

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo // Bubble Tea Update requires type switch on all message types
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Calculate viewport height: total - input - separators - help
		inputHeight := m.input.Height() + promptLines
		fixedHeight := separatorLines + inputHeight + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)

		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(vpHeight)
		m.input.SetWidth(msg.Width - 4) // Room for "> " prompt
		m.help.SetWidth(msg.Width)

		m.rebuildViewportContent()
		return m, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state != StateInput {
			m.rebuildViewportContent()
		}
		return m, cmd

	case clientReadyMsg:
		if msg.err != nil {
			m.state = StateInput
			m.addNotice(roleError, msg.err.Error())
			m.rebuildViewportContent()
			return m, m.input.Focus()
		}
		return m, m.loadHistory()

	case historyMsg:
		m.state = StateInput
		m.messages = transcript(msg.messages)
		if msg.readErr != nil {
			m.addNotice(roleSystem, i18n.T("tui.notice.history_unavailable"))
		}
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, m.input.Focus()

	case sendDoneMsg:
		if msg.err != nil {
			m.state = StateInput
			m.addNotice(roleError, msg.err.Error())
			m.rebuildViewportContent()
			m.viewport.GotoBottom()
			return m, m.input.Focus()
		}
		// Refetch so the assistant's reply shows up.
		m.state = StateLoading
		return m, m.loadHistory()

	case sessionChangedMsg:
		if msg.err != nil {
			m.state = StateInput
			m.addNotice(roleError, msg.err.Error())
			m.rebuildViewportContent()
			return m, m.input.Focus()
		}
		m.addNotice(roleSystem, i18n.T(msg.notice))
		m.state = StateLoading
		return m, m.loadHistory()

	case sessionListMsg:
		m.state = StateInput
		if msg.err != nil {
			m.addNotice(roleError, msg.err.Error())
		} else {
			m.addNotice(roleSystem, renderSessionList(msg.sessions, m.client.CurrentSessionID()))
		}
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// addNotice appends a local system or error line under the transcript.
func (m *Model) addNotice(role, text string) {
	m.messages = append(m.messages, displayMessage{Role: role, Text: text})
}
