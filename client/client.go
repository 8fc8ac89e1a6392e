package main

import (
	"bufio"
	"chat-relay/infrastructure/websocket"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ws "github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	URL      string `envconfig:"RELAY_URL" default:"ws://localhost:8080/ws"`
	Username string `envconfig:"RELAY_USERNAME" required:"true"`
	Room     string `envconfig:"RELAY_ROOM" default:"General"`
	// RELAY_TOKEN is only needed when the server runs with AUTH_SECRET
	Token    string `envconfig:"RELAY_TOKEN"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`
	Colours  bool   `envconfig:"RELAY_COLOURS" default:"true"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	color.Enable = config.Colours
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts *ws.DialOptions
	if config.Token != "" {
		opts = &ws.DialOptions{HTTPHeader: http.Header{"Authorization": []string{"Bearer " + config.Token}}}
	}
	conn, _, err := ws.Dial(ctx, config.URL, opts)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to relay at %s: %w", config.URL, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close(ws.StatusNormalClosure, "bye")
	}()

	session := NewSession(config.Username, os.Stdout)
	if err := emit(ctx, conn, session.Join(config.Room)); err != nil {
		return exitRuntime, err
	}
	log.Info(fmt.Sprintf(">>> Connected to %s as %s (/quit to leave)", config.URL, config.Username))

	errs := make(chan error, 2)
	go func() { errs <- receive(ctx, conn, session) }()
	go func() { errs <- send(ctx, conn, session, os.Stdin) }()

	select {
	case <-ctx.Done():
		log.Info("Stopping client...")
		return exitOK, nil
	case err := <-errs:
		if err == nil || ctx.Err() != nil {
			return exitOK, nil
		}
		return exitRuntime, err
	}
}

func receive(ctx context.Context, conn *ws.Conn, session *Session) error {
	for {
		var env websocket.Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			if ws.CloseStatus(err) == ws.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}
		if err := session.Render(env); err != nil {
			return err
		}
	}
}

// send relays stdin lines until EOF or /quit.
func send(ctx context.Context, conn *ws.Conn, session *Session, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		env, quit, err := session.Parse(scanner.Text())
		if err != nil {
			session.Warn(err.Error())
			continue
		}
		if quit {
			return nil
		}
		if env == nil {
			continue
		}
		if err := emit(ctx, conn, *env); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func emit(ctx context.Context, conn *ws.Conn, env websocket.Envelope) error {
	if err := wsjson.Write(ctx, conn, env); err != nil {
		return fmt.Errorf("failed to send %s: %w", env.Event, err)
	}
	return nil
}

func envelope(name string, data any) websocket.Envelope {
	raw, _ := json.Marshal(data)
	return websocket.Envelope{Event: name, Data: raw}
}
