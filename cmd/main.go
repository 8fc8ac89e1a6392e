package main

import (
	"chat-relay/infrastructure/websocket"
	"chat-relay/moderation"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and owns their lifecycle, so that deferred
// cleanups run before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. History backend
	history, closeHistory, err := newHistory(config, log)
	if err != nil {
		return fmt.Errorf("history backend failed: %w", err)
	}
	defer func() {
		log.Info("Closing history store...")
		_ = closeHistory()
	}()

	// 3. Supervision & Orchestration
	sup := workers.NewSupervisor(log, config.RestartInterval)
	orchestrator := runtime.NewOrchestrator(log, sup,
		runtime.NewRoomRegistry(config.MaxRooms), history,
		config.BufferSize, config.StatsInterval)

	if config.EnableModeration {
		data, err := moderation.NewEmbeddedLoader().LoadAll("censored")
		if err != nil {
			return fmt.Errorf("censored words loading failed: %w", err)
		}
		moderator, err := moderation.NewModerator(data.Words, config.ReplacementRune(), log)
		if err != nil {
			return fmt.Errorf("moderator init failed: %w", err)
		}
		orchestrator.Coordinator().
			WithTextFilter(moderator).
			WithLanguageDetector(moderation.DetectLanguage)
		log.Info("Moderation enabled", "words", len(data.Words), "languages", data.Languages)
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestratorDone := make(chan struct{})
	go func() {
		defer close(orchestratorDone)
		_ = orchestrator.Start(ctx)
	}()

	// 5. WebSocket + REST server
	server := websocket.NewServer(log, orchestrator, websocket.Config{
		ConnectionBufferSize: config.ConnectionBufferSize,
		MaxContentLength:     config.MaxContentLength,
		AuthSecret:           []byte(config.AuthSecret),
		ReadTimeout:          config.ReadTimeout,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := server.Listen(config.Address()); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		orchestrator.Stop()
		<-orchestratorDone
		return err
	}

	// 7. Final Cleanup: sockets first so their Disconnects still get processed
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}
	orchestrator.Stop()
	<-orchestratorDone
	log.Info("Program stopped cleanly")

	return nil
}
