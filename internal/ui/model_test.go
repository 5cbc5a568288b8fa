package ui

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erilali/chatclient/internal/session"
)

const testEndpoint = "ws://127.0.0.1:8090/c05554ae-b4ee-4976-ac05-97aaf3c98a24"

type fakeSource struct {
	state   session.State
	events  []session.Event
	changes chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{state: session.New(testEndpoint), changes: make(chan struct{}, 1)}
}

func (f *fakeSource) Dispatch(ev session.Event) { f.events = append(f.events, ev) }
func (f *fakeSource) Snapshot() session.State   { return f.state.Snapshot() }
func (f *fakeSource) Changes() <-chan struct{}  { return f.changes }

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func connectedState(chat ...string) session.State {
	s := session.New(testEndpoint)
	s, _, _ = session.Reduce(s, session.Connect{})
	s, _, _ = session.Reduce(s, session.Connected{})
	for _, line := range chat {
		s, _, _ = session.Reduce(s, session.Error{Text: line})
	}
	return s
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestDisconnectedShowsConnectPrompt(t *testing.T) {
	m := New(newFakeSource())
	view := m.View()
	assert.Contains(t, view, "[ Connect ]")
	assert.Contains(t, view, testEndpoint)
	assert.NotContains(t, view, "Send a message")
}

func TestEnterWhileDisconnectedConnects(t *testing.T) {
	src := newFakeSource()
	m := New(src)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []session.Event{session.Connect{}}, src.events)

	m = typeText(t, m, "ignored")
	assert.Len(t, src.events, 1, "typing does nothing on the connect screen")
}

func TestConnectingShowsProgress(t *testing.T) {
	src := newFakeSource()
	m := New(src)

	s, _, _ := session.Reduce(session.New(testEndpoint), session.Connect{})
	m = update(t, m, stateMsg(s))
	assert.Contains(t, m.View(), "Connecting to "+testEndpoint)
}

func TestConnectFailureLineOnPrompt(t *testing.T) {
	m := New(newFakeSource())
	s, _, _ := session.Reduce(session.New(testEndpoint), session.Error{Text: session.ConnectFailed})
	m = update(t, m, stateMsg(s))

	view := m.View()
	assert.Contains(t, view, "[ Connect ]")
	assert.Contains(t, view, session.ConnectFailed)
}

func TestConnectedShowsChat(t *testing.T) {
	m := New(newFakeSource())
	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 10})
	m = update(t, m, stateMsg(connectedState("first", "second")))

	view := m.View()
	assert.Contains(t, view, "first")
	assert.Contains(t, view, "second")
	assert.Contains(t, view, "[Enter: Send]")
	assert.NotContains(t, view, "[ Connect ]")
}

func TestTypingDispatchesInputChanged(t *testing.T) {
	src := newFakeSource()
	m := New(src)
	m = update(t, m, stateMsg(connectedState()))

	m = typeText(t, m, "ab")
	assert.Equal(t, []session.Event{
		session.InputChanged{Text: "a"},
		session.InputChanged{Text: "ab"},
	}, src.events)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, session.InputChanged{Text: "a"}, src.events[len(src.events)-1])
}

func TestEnterWhileConnectedSends(t *testing.T) {
	src := newFakeSource()
	m := New(src)

	s := connectedState()
	m = update(t, m, stateMsg(s))
	m = typeText(t, m, "abc")

	s, _, _ = session.Reduce(s, session.InputChanged{Text: "abc"})
	m = update(t, m, stateMsg(s))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, session.SendMessage{}, src.events[len(src.events)-1])

	s, _, _ = session.Reduce(s, session.SendMessage{})
	m = update(t, m, stateMsg(s))
	assert.Empty(t, m.input.Value(), "cleared pending input resets the field")
}

func TestEnterClearsFieldWhenSnapshotsCoalesce(t *testing.T) {
	src := newFakeSource()
	m := New(src)

	s := connectedState()
	m = update(t, m, stateMsg(s))
	m = typeText(t, m, "abc")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// InputChanged and SendMessage arrive in a single snapshot.
	s, _, _ = session.Reduce(s, session.InputChanged{Text: "abc"})
	s, _, _ = session.Reduce(s, session.SendMessage{})
	m = update(t, m, stateMsg(s))

	assert.Empty(t, s.Input)
	assert.Empty(t, m.input.Value())

	m = typeText(t, m, "d")
	assert.Equal(t, session.InputChanged{Text: "d"}, src.events[len(src.events)-1])
}

func TestLateSnapshotKeepsNewTyping(t *testing.T) {
	src := newFakeSource()
	m := New(src)

	s := connectedState()
	m = update(t, m, stateMsg(s))
	m = typeText(t, m, "abc")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(t, m, "x")

	s, _, _ = session.Reduce(s, session.InputChanged{Text: "abc"})
	m = update(t, m, stateMsg(s))
	s, _, _ = session.Reduce(s, session.SendMessage{})
	m = update(t, m, stateMsg(s))

	assert.Equal(t, "x", m.input.Value())
}

func TestScrollBackThroughHistory(t *testing.T) {
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	m := New(newFakeSource())
	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	m = update(t, m, stateMsg(connectedState(lines...)))

	bottom := m.viewport.YOffset
	require.Positive(t, bottom)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Less(t, m.viewport.YOffset, bottom)
	assert.Empty(t, m.input.Value(), "scroll keys do not reach the text box")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, bottom, m.viewport.YOffset)
}

func TestDisconnectReturnsToPrompt(t *testing.T) {
	m := New(newFakeSource())
	s := connectedState("kept")
	m = update(t, m, stateMsg(s))

	s, _, _ = session.Reduce(s, session.Disconnected{})
	m = update(t, m, stateMsg(s))
	assert.Contains(t, m.View(), "[ Connect ]")
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		_, cmd := New(newFakeSource()).Update(tea.KeyMsg{Type: key})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestWaitForChangeDeliversSnapshot(t *testing.T) {
	src := newFakeSource()
	m := New(src)

	src.state = connectedState("hello")
	src.changes <- struct{}{}

	msg := m.waitForChange()()
	got, ok := msg.(stateMsg)
	require.True(t, ok)
	assert.Equal(t, []string{"hello"}, got.Chat)
}
