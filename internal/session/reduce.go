package session

import "github.com/erilali/chatclient/internal/message"

// Reduce applies ev to s and returns the new state, the effects to run and
// whether the view must be redrawn. It performs no I/O. The returned state may
// share the chat backing array with s, so callers replace s with the result.
func Reduce(s State, ev Event) (State, []Effect, bool) {
	switch ev := ev.(type) {
	case Connect:
		if s.Conn != nil {
			return s, nil, false
		}
		s.handles++
		s.Conn = &Handle{Seq: s.handles, URL: s.Endpoint}
		return s, []Effect{Dial{Handle: s.Conn}}, true

	case Disconnected:
		var effects []Effect
		if s.Conn != nil {
			effects = append(effects, Close{Handle: s.Conn})
		}
		s.Conn = nil
		s.Connected = false
		return s, effects, true

	case Connected:
		s.Connected = true
		return s, nil, true

	case MessageReceived:
		p, err := message.Deserialize(ev.Text)
		if err != nil {
			return s, []Effect{Diagnostic{Text: "Received invalid data from the server: " + ev.Text, Err: err}}, false
		}
		switch p := p.(type) {
		case message.Message:
			s.Chat = append(s.Chat, p.Text)
		case message.Error:
			s.Chat = append(s.Chat, p.Text)
		}
		return s, nil, true

	case SendMessage:
		if s.Conn == nil {
			return s, nil, false
		}
		frame, err := message.Serialize(message.Message{Text: s.Input})
		if err != nil {
			return s, []Effect{Diagnostic{Text: "Failed to encode outgoing message", Err: err}}, false
		}
		s.Input = ""
		return s, []Effect{Send{Handle: s.Conn, Frame: frame}}, true

	case InputChanged:
		s.Input = ev.Text
		return s, nil, true

	case Error:
		s.Chat = append(s.Chat, ev.Text)
		return s, nil, true
	}

	return s, nil, false
}
