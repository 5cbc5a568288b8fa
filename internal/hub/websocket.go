// internal/hub/websocket.go
package hub

import (
	"context"
	"net/http"
	"time"

	"github.com/erilali/chatclient/internal/session"
	"github.com/gorilla/websocket"
)

const (
	webSocketReadDeadline  = 60 * time.Second
	webSocketWriteDeadline = 10 * time.Second
	webSocketPingPeriod    = (webSocketReadDeadline * 9) / 10 // Must be less than readDeadline
	maxFrameSize           = 64 * 1024
)

// Dialer opens client WebSocket connections. *websocket.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// dial connects c and runs its pumps until the socket goes away. A failed
// dial is reported like a transport error so the session returns to
// disconnected instead of dying.
func (h *Hub) dial(ctx context.Context, c *Conn) {
	log := h.Logger.WithField("handle", c.Handle.Seq)
	log.Infof("Connecting to %s", c.Handle.URL)

	ws, _, err := h.dialer.DialContext(ctx, c.Handle.URL, nil)
	if err != nil {
		if ctx.Err() != nil || c.closed() {
			return
		}
		log.WithError(err).Error("WebSocket dial failed")
		h.Dispatch(session.Error{Text: session.ConnectFailed})
		h.Dispatch(session.Disconnected{})
		return
	}
	if c.closed() {
		ws.Close()
		return
	}

	c.Socket = ws
	log.Info("Connected")
	h.Dispatch(session.Connected{})

	go h.WritePump(c)
	h.ReadPump(c)
}

// ReadPump reads frames from the socket and turns them into session events.
func (h *Hub) ReadPump(c *Conn) {
	defer c.Socket.Close()

	c.Socket.SetReadLimit(maxFrameSize)
	c.Socket.SetReadDeadline(time.Now().Add(webSocketReadDeadline))
	c.Socket.SetPongHandler(func(string) error {
		c.Socket.SetReadDeadline(time.Now().Add(webSocketReadDeadline))
		return nil
	})

	for {
		kind, data, err := c.Socket.ReadMessage()
		if err != nil {
			if c.closed() {
				return
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.Logger.WithError(err).Errorf("WebSocket error on handle %d", c.Handle.Seq)
				h.Dispatch(session.Error{Text: session.ConnectFailed})
			} else {
				h.Logger.Infof("Server closed handle %d", c.Handle.Seq)
			}
			h.Dispatch(session.Disconnected{})
			return
		}
		c.Socket.SetReadDeadline(time.Now().Add(webSocketReadDeadline))

		if kind != websocket.TextMessage {
			h.Logger.Debugf("Ignoring non-text frame (%d bytes)", len(data))
			continue
		}
		h.Dispatch(session.MessageReceived{Text: string(data)})
	}
}

// WritePump writes queued frames, one packet per frame, and keeps the socket alive with pings.
func (h *Hub) WritePump(c *Conn) {
	ticker := time.NewTicker(webSocketPingPeriod)
	defer func() {
		ticker.Stop()
		c.Socket.Close()
	}()

	for {
		select {
		case frame := <-c.Send:
			c.Socket.SetWriteDeadline(time.Now().Add(webSocketWriteDeadline))
			if err := c.Socket.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				h.Logger.WithError(err).Errorf("Write failed on handle %d", c.Handle.Seq)
				return
			}

		case <-c.quit:
			c.Socket.SetWriteDeadline(time.Now().Add(webSocketWriteDeadline))
			c.Socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			c.Socket.SetWriteDeadline(time.Now().Add(webSocketWriteDeadline))
			if err := c.Socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return // Server connection is likely broken
			}
		}
	}
}
