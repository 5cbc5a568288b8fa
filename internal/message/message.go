// internal/message/message.go
// Contains the packet envelope exchanged with the chat server over WebSocket.
package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Packet type discriminators as they appear on the wire.
const (
	TypeMessage = "Message"
	TypeError   = "Error"
)

// ErrInvalidPacket is wrapped by every Deserialize failure.
var ErrInvalidPacket = errors.New("invalid packet")

// Packet is either a Message or an Error.
type Packet interface {
	Type() string
}

// Message carries free-form chat content.
type Message struct {
	Text string
}

// Error carries a server-side error code and its description.
type Error struct {
	Code uint64
	Text string
}

func (Message) Type() string { return TypeMessage }
func (Error) Type() string   { return TypeError }

// envelope is the adjacently tagged wire form: {"type": ..., "data": ...}.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Serialize converts a packet into its wire text.
func Serialize(p Packet) (string, error) {
	var data interface{}
	switch p := p.(type) {
	case Message:
		data = p.Text
	case Error:
		data = []interface{}{p.Code, p.Text}
	default:
		return "", fmt.Errorf("serialize: unsupported packet %T", p)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("serialize %s: %w", p.Type(), err)
	}
	out, err := json.Marshal(envelope{Type: p.Type(), Data: raw})
	if err != nil {
		return "", fmt.Errorf("serialize %s: %w", p.Type(), err)
	}
	return string(out), nil
}

// Deserialize parses wire text into a packet. The "type" and "data" keys
// must match exactly; any other keys are ignored.
func Deserialize(text string) (Packet, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPacket, err)
	}
	rawType, ok := fields["type"]
	if !ok || isNull(rawType) {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidPacket)
	}
	var env envelope
	if err := json.Unmarshal(rawType, &env.Type); err != nil {
		return nil, fmt.Errorf("%w: type: %v", ErrInvalidPacket, err)
	}
	env.Data = fields["data"]
	if isNull(env.Data) {
		return nil, fmt.Errorf("%w: missing data for type %q", ErrInvalidPacket, env.Type)
	}

	switch env.Type {
	case TypeMessage:
		var content string
		if err := json.Unmarshal(env.Data, &content); err != nil {
			return nil, fmt.Errorf("%w: message data: %v", ErrInvalidPacket, err)
		}
		return Message{Text: content}, nil

	case TypeError:
		var fields []json.RawMessage
		if err := json.Unmarshal(env.Data, &fields); err != nil {
			return nil, fmt.Errorf("%w: error data: %v", ErrInvalidPacket, err)
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: error data has %d fields, want 2", ErrInvalidPacket, len(fields))
		}
		if isNull(fields[0]) || isNull(fields[1]) {
			return nil, fmt.Errorf("%w: error data contains null", ErrInvalidPacket)
		}
		var code uint64
		if err := json.Unmarshal(fields[0], &code); err != nil {
			return nil, fmt.Errorf("%w: error code: %v", ErrInvalidPacket, err)
		}
		var content string
		if err := json.Unmarshal(fields[1], &content); err != nil {
			return nil, fmt.Errorf("%w: error text: %v", ErrInvalidPacket, err)
		}
		return Error{Code: code, Text: content}, nil

	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidPacket, env.Type)
	}
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
