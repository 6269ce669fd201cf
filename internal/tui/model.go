// Package tui provides the Bubble Tea terminal interface for Counsel.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/counsel0/counsel/internal/chat"
	"github.com/counsel0/counsel/internal/i18n"
	"github.com/counsel0/counsel/internal/session"
)

// State represents the TUI state machine.
type State int

// TUI state machine states.
const (
	StateInput   State = iota // Awaiting user input
	StateSending              // Message dispatch in flight
	StateLoading              // History or session refresh in flight
)

// Memory bounds to prevent unbounded growth.
const maxHistory = 100 // Maximum input history entries

// Display role constants.
const (
	roleSystem = "system"
	roleError  = "error"
)

// Layout constants for viewport height calculation.
const (
	separatorLines = 2 // Two separator lines (above and below input)
	helpLines      = 1 // Help bar height
	promptLines    = 1 // Prompt prefix line
	minViewport    = 3 // Minimum viewport height
)

// displayMessage is one rendered line group: a conversation turn or a
// local system/error notice.
type displayMessage struct {
	Role string
	Text string
}

// Model is the Bubble Tea model for the Counsel terminal interface.
type Model struct {
	// Input (textarea for multi-line support, Shift+Enter for newline)
	input      textarea.Model
	history    []string
	historyIdx int

	// State
	state     State
	lastCtrlC time.Time

	// Output
	spinner  spinner.Model
	viewBuf  strings.Builder // Reusable buffer for View() to reduce allocations
	messages []displayMessage

	// Scrollable transcript viewport
	viewport viewport.Model

	// Help bar for keyboard shortcuts
	help help.Model
	keys keyMap

	// Dependencies (direct, no interface)
	client *chat.Client
	ctx    context.Context
	cancel context.CancelFunc // For canceling all operations on exit

	// Dimensions
	width  int
	height int

	// Styles
	styles Styles
}

// New creates a Model bound to a chat client.
// Returns error if required dependencies are nil.
//
// IMPORTANT: ctx MUST be the same context passed to tea.WithContext()
// to ensure consistent cancellation behavior.
func New(ctx context.Context, client *chat.Client) (*Model, error) {
	if client == nil {
		return nil, errors.New("tui.New: client is required")
	}
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}

	ctx, cancel := context.WithCancel(ctx)

	// Enter submits, Shift+Enter adds newline (default behavior)
	ta := textarea.New()
	ta.Placeholder = i18n.T("tui.placeholder")
	ta.SetHeight(1)
	ta.SetWidth(120) // Wide enough for long text, updated on WindowSizeMsg
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	// Clean, minimal styling: no background colors, just simple text
	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{
		Focused: cleanStyle,
		Blurred: cleanStyle,
	})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Disable the viewport's built-in keyboard handling; keys are routed
	// explicitly in handleKey to avoid conflicts with textarea/history
	// navigation.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{}

	h := help.New()

	return &Model{
		client:   client,
		ctx:      ctx,
		cancel:   cancel,
		input:    ta,
		spinner:  sp,
		viewport: vp,
		help:     h,
		keys:     newKeyMap(),
		styles:   DefaultStyles(),
		history:  make([]string, 0, maxHistory),
		width:    80, // Default width until WindowSizeMsg arrives
		state:    StateLoading,
	}, nil
}

// Init implements tea.Model. The client is initialized and the current
// transcript loaded before the first keystroke is accepted.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.input.Focus(),
		m.initClient(),
	)
}

// transcript converts fetched conversation turns into display messages,
// keeping any local notices out of it.
func transcript(messages []session.Message) []displayMessage {
	out := make([]displayMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, displayMessage{Role: msg.Role, Text: msg.Content})
	}
	return out
}
