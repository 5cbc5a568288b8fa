// Package ui renders the chat session in the terminal: a connect prompt while
// disconnected, the chat history with an input line once connected.
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/erilali/chatclient/internal/session"
)

const inputHeight = 2

// Source is the session owner the UI reads from and reports user actions to.
type Source interface {
	Dispatch(ev session.Event)
	Snapshot() session.State
	Changes() <-chan struct{}
}

// stateMsg delivers a fresh session snapshot to Update.
type stateMsg session.State

// Model is the bubbletea model for the chat client.
type Model struct {
	source   Source
	state    session.State
	input    textinput.Model
	viewport viewport.Model
	width    int
	height   int
}

// New builds the model around source's current state.
func New(source Source) Model {
	ti := textinput.New()
	ti.Placeholder = "Send a message"
	ti.Prompt = "> "

	m := Model{
		source:   source,
		state:    source.Snapshot(),
		input:    ti,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   20 + inputHeight,
	}
	m.syncView(session.State{})
	return m
}

// Init starts listening for session changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange())
}

func (m Model) waitForChange() tea.Cmd {
	source := m.source
	changes := source.Changes()
	return func() tea.Msg {
		<-changes
		return stateMsg(source.Snapshot())
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if !m.state.Connected {
				m.source.Dispatch(session.Connect{})
				return m, nil
			}
			m.source.Dispatch(session.SendMessage{})
			// Sending clears the pending input; snapshots may coalesce the
			// typed text and the send, so the field is cleared here.
			if m.state.Conn != nil {
				m.input.Reset()
			}
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			if !m.state.Connected {
				return m, nil
			}
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		if !m.state.Connected {
			return m, nil
		}
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if after := m.input.Value(); after != before {
			m.source.Dispatch(session.InputChanged{Text: after})
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-inputHeight, 1)
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 1)
		m.viewport.SetContent(strings.Join(m.state.Chat, "\n"))
		m.viewport.GotoBottom()
		return m, nil

	case stateMsg:
		prev := m.state
		m.state = session.State(msg)
		m.syncView(prev)
		return m, m.waitForChange()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// syncView brings the widgets in line with m.state after a transition from prev.
func (m *Model) syncView(prev session.State) {
	if m.state.Connected {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	if len(m.state.Chat) != len(prev.Chat) {
		m.viewport.SetContent(strings.Join(m.state.Chat, "\n"))
		m.viewport.GotoBottom()
	}
}

func (m Model) View() string {
	if !m.state.Connected {
		return m.connectView()
	}
	return m.viewport.View() + "\n" + m.input.View() + "  [Enter: Send]"
}

func (m Model) connectView() string {
	var b strings.Builder
	b.WriteString("Chat\n\n")
	if m.state.Conn != nil {
		b.WriteString("Connecting to " + m.state.Conn.URL + " ...\n")
	} else {
		b.WriteString("[ Connect ]  press Enter to connect to " + m.state.Endpoint + "\n")
	}
	if n := len(m.state.Chat); n > 0 {
		b.WriteString("\n" + m.state.Chat[n-1] + "\n")
	}
	b.WriteString("\nEsc or Ctrl+C to quit\n")
	return b.String()
}
