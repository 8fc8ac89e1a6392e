package test

import (
	"chat-relay/domain"
	"chat-relay/infrastructure/storage"
	"chat-relay/infrastructure/websocket"
	"chat-relay/moderation"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"testing"
	"time"

	ws "github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// Test_Scenario runs the relay the way cmd wires it with every optional
// component on: Badger history, moderation and language tagging.
func Test_Scenario(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Core with Badger history limited to 2 messages per room
	history, err := storage.OpenBadgerHistory(log, 2)
	req.NoError(err)
	defer func() { _ = history.Close() }()

	data, err := moderation.NewEmbeddedLoader().LoadAll("censored")
	req.NoError(err)
	moderator, err := moderation.NewModerator(data.Words, '*', log)
	req.NoError(err)

	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, 50*time.Millisecond),
		runtime.NewRoomRegistry(10), history, 100, 20*time.Millisecond)
	orchestrator.Coordinator().
		WithTextFilter(moderator).
		WithLanguageDetector(moderation.DetectLanguage)
	go func() { _ = orchestrator.Start(ctx) }()

	// 2. Transport
	server := websocket.NewServer(log, orchestrator, websocket.Config{ConnectionBufferSize: 64, MaxContentLength: 500})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	req.NoError(err)
	go func() { _ = server.Listener(ln) }()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
		orchestrator.Stop()
	}()

	conn, _, err := ws.Dial(ctx, "ws://"+ln.Addr().String()+"/ws", nil)
	req.NoError(err)
	defer func() { _ = conn.CloseNow() }()

	expect := func(name string, v any) {
		readCtx, readCancel := context.WithTimeout(ctx, 2*time.Second)
		defer readCancel()
		for {
			var env websocket.Envelope
			req.NoError(wsjson.Read(readCtx, conn, &env), "waiting for %s", name)
			if env.Event == name {
				req.NoError(json.Unmarshal(env.Data, v))
				return
			}
		}
	}
	emit := func(name string, data any) {
		raw, err := json.Marshal(data)
		req.NoError(err)
		req.NoError(wsjson.Write(ctx, conn, websocket.Envelope{Event: name, Data: raw}))
	}

	// 3. Join and talk
	var rooms []string
	expect("room_list_update", &rooms)
	emit(websocket.JoinRoomEvent, map[string]string{"username": "alice", "room": domain.DefaultRoom})
	var previous []websocket.Message
	expect("previous_messages", &previous)
	req.Empty(previous)

	texts := []string{
		"Hello everyone, I am really happy to meet all of you in this room today",
		"You are such an idiot sometimes",
		"Bonjour à tous, je suis très content de vous retrouver dans ce salon aujourd'hui",
	}
	received := make([]websocket.Message, 0, len(texts))
	for _, text := range texts {
		emit(websocket.SendMessageEvent, text)
		var message websocket.Message
		expect("new_message", &message)
		received = append(received, message)
	}

	// Then texts are censored and tagged
	req.Equal("en", received[0].Lang)
	req.Equal("You are such an ***** sometimes", received[1].Text)
	req.Equal("fr", received[2].Lang)

	// And Badger only kept the last two messages
	stored, err := orchestrator.History(ctx, domain.DefaultRoom)
	req.NoError(err)
	req.Len(stored, 2)
	req.Equal(received[1].ID, stored[0].ID.String())
	req.Equal(received[2].ID, stored[1].ID.String())
	req.Equal(received[1].Text, stored[0].Text)

	stats := orchestrator.Stats()
	req.Equal(1, stats.Connections)
	req.Equal(1, stats.Users)
}
