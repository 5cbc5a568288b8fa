// internal/hub/nats.go
package hub

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/erilali/chatclient/internal/logger"
	"github.com/nats-io/nats.go"
)

const natsConnectTimeout = 2 * time.Second

// ConnectNATS connects to url. It returns nil when url is empty or the server
// is unreachable; the client then runs without a mirror.
func ConnectNATS(url string, log *logger.Logger) *nats.Conn {
	if url == "" {
		return nil
	}
	log.Infof("Connecting to NATS at %s", url)
	nc, err := nats.Connect(url, nats.Name("chatclient"), nats.Timeout(natsConnectTimeout))
	if err != nil {
		log.Errorf("Error connecting to NATS: %v", err)
		log.Warn("Running without NATS connection. Chat mirroring will be disabled.")
		return nil
	}
	log.Info("Successfully connected to NATS")
	return nc
}

// Mirror publishes the session's chat traffic to NATS for outside observers.
// A nil *Mirror is valid and publishes nothing.
type Mirror struct {
	nc        *nats.Conn
	sessionID string
	logger    *logger.Logger
}

// NewMirror returns nil when nc is nil.
func NewMirror(nc *nats.Conn, sessionID string, logger *logger.Logger) *Mirror {
	if nc == nil {
		return nil
	}
	return &Mirror{nc: nc, sessionID: sessionID, logger: logger}
}

// LinesSubject carries every line appended to the chat history.
func (m *Mirror) LinesSubject() string { return fmt.Sprintf("chat.%s.lines", m.sessionID) }

// SentSubject carries every frame written to the server.
func (m *Mirror) SentSubject() string { return fmt.Sprintf("chat.%s.sent", m.sessionID) }

// PublishLine mirrors one chat history line.
func (m *Mirror) PublishLine(line string) {
	if m == nil {
		return
	}
	m.publish(m.LinesSubject(), map[string]interface{}{
		"session_id": m.sessionID,
		"line":       line,
		"timestamp":  time.Now().Unix(),
	})
}

// PublishSent mirrors one outgoing wire frame.
func (m *Mirror) PublishSent(frame string) {
	if m == nil {
		return
	}
	m.publish(m.SentSubject(), map[string]interface{}{
		"session_id": m.sessionID,
		"frame":      frame,
		"timestamp":  time.Now().Unix(),
	})
}

func (m *Mirror) publish(subject string, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		m.logger.Errorf("Failed to marshal mirror payload: %v", err)
		return
	}
	if err := m.nc.Publish(subject, data); err != nil {
		m.logger.Errorf("Failed to publish to NATS subject %s: %v", subject, err)
	}
}
