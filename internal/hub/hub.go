// internal/hub/hub.go
// Owns the chat session: a single event loop applies session events in order
// and runs the effects they produce against the WebSocket transport.
package hub

import (
	"context"
	"sync"

	"github.com/erilali/chatclient/internal/logger"
	"github.com/erilali/chatclient/internal/session"
)

const eventQueueSize = 256

// Hub serializes every session transition through Run.
type Hub struct {
	Logger *logger.Logger

	events  chan session.Event
	changed chan struct{}
	done    chan struct{}

	dialer Dialer
	mirror *Mirror

	// Owned by the Run goroutine.
	state session.State
	conns map[*session.Handle]*Conn

	mu       sync.RWMutex
	snapshot session.State
}

// NewHub creates a hub for endpoint. mirror may be nil.
func NewHub(endpoint string, dialer Dialer, mirror *Mirror, logger *logger.Logger) *Hub {
	state := session.New(endpoint)
	return &Hub{
		Logger:   logger,
		events:   make(chan session.Event, eventQueueSize),
		changed:  make(chan struct{}, 1),
		done:     make(chan struct{}),
		dialer:   dialer,
		mirror:   mirror,
		state:    state,
		conns:    make(map[*session.Handle]*Conn),
		snapshot: state.Snapshot(),
	}
}

// Run processes events until ctx is cancelled, then closes any open connection.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for handle, c := range h.conns {
			c.close()
			delete(h.conns, handle)
		}
		h.Logger.Info("Hub stopped")
	}()

	h.Logger.Infof("Hub started for %s", h.state.Endpoint)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.events:
			h.apply(ctx, ev)
		}
	}
}

// Dispatch queues ev for the event loop. It is safe to call from any
// goroutine and returns immediately once the hub has stopped.
func (h *Hub) Dispatch(ev session.Event) {
	select {
	case h.events <- ev:
	case <-h.done:
	}
}

// Snapshot returns the state as of the last redraw-worthy transition.
func (h *Hub) Snapshot() session.State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshot.Snapshot()
}

// Changes signals after the snapshot changes. Signals coalesce, so a reader
// should always fetch Snapshot rather than count them.
func (h *Hub) Changes() <-chan struct{} {
	return h.changed
}

func (h *Hub) apply(ctx context.Context, ev session.Event) {
	seen := len(h.state.Chat)
	next, effects, render := session.Reduce(h.state, ev)
	h.state = next

	for _, line := range h.state.Chat[seen:] {
		h.mirror.PublishLine(line)
	}
	for _, eff := range effects {
		h.run(ctx, eff)
	}

	if render {
		snap := h.state.Snapshot()
		h.mu.Lock()
		h.snapshot = snap
		h.mu.Unlock()
		select {
		case h.changed <- struct{}{}:
		default:
		}
	}
}

func (h *Hub) run(ctx context.Context, eff session.Effect) {
	switch eff := eff.(type) {
	case session.Dial:
		c := newConn(eff.Handle)
		h.conns[eff.Handle] = c
		go h.dial(ctx, c)

	case session.Send:
		c, ok := h.conns[eff.Handle]
		if !ok {
			h.Logger.Warnf("No connection for handle %s, dropping frame", eff.Handle)
			return
		}
		select {
		case c.Send <- eff.Frame:
			h.mirror.PublishSent(eff.Frame)
		default:
			h.Logger.Warnf("Send queue full on handle %d, dropping frame", eff.Handle.Seq)
		}

	case session.Close:
		if c, ok := h.conns[eff.Handle]; ok {
			delete(h.conns, eff.Handle)
			c.close()
		}

	case session.Diagnostic:
		h.Logger.WithError(eff.Err).Warn(eff.Text)
	}
}
