// internal/hub/client.go
package hub

import (
	"sync"

	"github.com/erilali/chatclient/internal/session"
	"github.com/gorilla/websocket"
)

const sendQueueSize = 256

// Conn is the live side of a session handle: the socket once dialed and the
// queue of frames waiting to be written to it.
type Conn struct {
	Handle *session.Handle
	Socket *websocket.Conn
	Send   chan string

	quit      chan struct{}
	closeOnce sync.Once
}

func newConn(handle *session.Handle) *Conn {
	return &Conn{
		Handle: handle,
		Send:   make(chan string, sendQueueSize),
		quit:   make(chan struct{}),
	}
}

// close asks the write pump to say goodbye and stops event reporting.
func (c *Conn) close() {
	c.closeOnce.Do(func() { close(c.quit) })
}

func (c *Conn) closed() bool {
	select {
	case <-c.quit:
		return true
	default:
		return false
	}
}
