// internal/api/api.go
// Local status endpoints for watching a running client from outside the terminal.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/erilali/chatclient/internal/logger"
	"github.com/erilali/chatclient/internal/session"
	"github.com/nats-io/nats.go"
)

const (
	version           = "1.0.0"
	readHeaderTimeout = 5 * time.Second
)

// SnapshotSource is satisfied by *hub.Hub.
type SnapshotSource interface {
	Snapshot() session.State
}

// SessionView is the JSON form of a session snapshot.
type SessionView struct {
	SessionID string    `json:"session_id"`
	Endpoint  string    `json:"endpoint"`
	Connected bool      `json:"connected"`
	Handle    uint64    `json:"handle,omitempty"`
	Chat      []string  `json:"chat"`
	Input     string    `json:"input"`
	Timestamp time.Time `json:"timestamp"`
}

// Server exposes /health and /api/session.
type Server struct {
	sessionID string
	source    SnapshotSource
	nc        *nats.Conn
	logger    *logger.Logger
	srv       *http.Server
}

// NewServer builds a status server for addr. nc may be nil.
func NewServer(addr, sessionID string, source SnapshotSource, nc *nats.Conn, logger *logger.Logger) *Server {
	s := &Server{
		sessionID: sessionID,
		source:    source,
		nc:        nc,
		logger:    logger,
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler returns the routes without starting a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/session", s.handleSession)
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.logger.Infof("Status server started at %s", ln.Addr())
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("Status server: %v", err)
		}
	}()
	return nil
}

// Shutdown stops the server, waiting for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	natsStatus := "disabled"
	if s.nc != nil {
		natsStatus = "disconnected"
		if s.nc.Status() == nats.CONNECTED {
			natsStatus = "connected"
		}
	}
	health := map[string]interface{}{
		"status":    "ok",
		"connected": s.source.Snapshot().Connected,
		"nats":      natsStatus,
		"version":   version,
	}
	writeJSON(w, health, s.logger)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	state := s.source.Snapshot()
	view := SessionView{
		SessionID: s.sessionID,
		Endpoint:  state.Endpoint,
		Connected: state.Connected,
		Chat:      state.Chat,
		Input:     state.Input,
		Timestamp: time.Now(),
	}
	if view.Chat == nil {
		view.Chat = []string{}
	}
	if state.Conn != nil {
		view.Handle = state.Conn.Seq
	}
	writeJSON(w, view, s.logger)
}

func writeJSON(w http.ResponseWriter, v interface{}, log *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Error encoding response: %v", err)
	}
}
