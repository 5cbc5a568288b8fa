// internal/session/session.go
// Session state, the events that drive it and the effects it asks the transport to run.
package session

import "fmt"

// ConnectFailed is the chat line shown when the transport reports an error.
const ConnectFailed = "Failed to connect to servers"

// Handle identifies one connection attempt. It is allocated on Connect and
// dropped on Disconnected; the transport binds the live socket to it.
type Handle struct {
	Seq uint64
	URL string
}

func (h *Handle) String() string {
	if h == nil {
		return "none"
	}
	return fmt.Sprintf("#%d %s", h.Seq, h.URL)
}

// State is the in-memory record of a single chat session.
type State struct {
	Endpoint  string
	Conn      *Handle // non-nil while connecting or connected
	Connected bool
	Chat      []string // append-only
	Input     string

	handles uint64
}

// New returns a disconnected session for the given endpoint.
func New(endpoint string) State {
	return State{Endpoint: endpoint}
}

// Snapshot returns a copy that shares nothing mutable with s.
func (s State) Snapshot() State {
	s.Chat = append([]string(nil), s.Chat...)
	return s
}

// Event is anything that can change the session.
type Event interface {
	event()
}

// Connect asks for a connection to the session endpoint.
type Connect struct{}

// Disconnected is reported by the transport when the socket closes.
type Disconnected struct{}

// Connected is reported by the transport once the socket is open.
type Connected struct{}

// MessageReceived carries the text of one incoming frame.
type MessageReceived struct {
	Text string
}

// SendMessage sends the pending input.
type SendMessage struct{}

// InputChanged replaces the pending input.
type InputChanged struct {
	Text string
}

// Error appends a line to the chat history.
type Error struct {
	Text string
}

func (Connect) event()         {}
func (Disconnected) event()    {}
func (Connected) event()       {}
func (MessageReceived) event() {}
func (SendMessage) event()     {}
func (InputChanged) event()    {}
func (Error) event()           {}

// Effect is work the transport must perform after a transition.
type Effect interface {
	effect()
}

// Dial opens a socket for the handle.
type Dial struct {
	Handle *Handle
}

// Send writes one text frame on the handle's socket.
type Send struct {
	Handle *Handle
	Frame  string
}

// Close tears down the handle's socket.
type Close struct {
	Handle *Handle
}

// Diagnostic is logged and never shown in the chat.
type Diagnostic struct {
	Text string
	Err  error
}

func (Dial) effect()       {}
func (Send) effect()       {}
func (Close) effect()      {}
func (Diagnostic) effect() {}
