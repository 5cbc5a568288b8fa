// main.go
// Application entry point: loads configuration, initializes the logger and runs the chat client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/erilali/chatclient/internal/api"
	"github.com/erilali/chatclient/internal/config"
	"github.com/erilali/chatclient/internal/hub"
	"github.com/erilali/chatclient/internal/logger"
	"github.com/erilali/chatclient/internal/ui"
	"github.com/erilali/chatclient/internal/util"
)

const shutdownTimeout = 2 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chatclient: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logConfig, err := util.LoadLoggerConfig(cfg.LoggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading logger config: %v, using defaults\n", err)
	}
	logger.InitLogger(logConfig)

	sessionID := uuid.NewString()
	clientLogger := logger.NewLogger("client").WithField("session", sessionID)
	clientLogger.WithFields(map[string]interface{}{
		"endpoint":    cfg.Endpoint,
		"level":       logConfig.Level,
		"log_to_file": logConfig.LogToFile,
		"file_path":   logConfig.FilePath,
	}).Info("Chat client starting")
	if _, err := cfg.EndpointChannel(); err != nil {
		clientLogger.Warnf("Endpoint does not name a channel UUID: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	natsLogger := logger.NewLogger("nats").WithField("session", sessionID)
	nc := hub.ConnectNATS(cfg.NatsURL, natsLogger)
	if nc != nil {
		defer nc.Close()
	}

	dialer := &websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}
	h := hub.NewHub(cfg.Endpoint, dialer, hub.NewMirror(nc, sessionID, natsLogger),
		logger.NewLogger("hub").WithField("session", sessionID))

	hubCtx, cancelHub := context.WithCancel(ctx)
	hubDone := make(chan struct{})
	go func() {
		h.Run(hubCtx)
		close(hubDone)
	}()
	defer func() {
		cancelHub()
		<-hubDone
	}()

	if cfg.StatusAddr != "" {
		status := api.NewServer(cfg.StatusAddr, sessionID, h, nc, logger.NewLogger("api"))
		if err := status.Start(); err != nil {
			return fmt.Errorf("start status server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := status.Shutdown(shutdownCtx); err != nil {
				clientLogger.Warnf("Status server shutdown: %v", err)
			}
		}()
	}

	program := tea.NewProgram(ui.New(h), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	clientLogger.Info("Chat client stopped")
	return nil
}
