package runtime_test

import (
	"chat-relay/domain"
	"chat-relay/domain/chat"
	"chat-relay/domain/event"
	"chat-relay/mocks"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// orderSink records, per author, the texts received in arrival order.
type orderSink struct {
	mu       sync.Mutex
	byAuthor map[string][]string
	total    int
}

func (s *orderSink) Send(e event.Event) bool {
	msg, ok := e.(event.NewMessage)
	if !ok {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byAuthor[msg.Message.Username] = append(s.byAuthor[msg.Message.Username], msg.Message.Text)
	s.total++
	return true
}

func (s *orderSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func TestOrchestrator_LoadTest(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// History is mocked so the disk-free relay path is what gets measured
	ctrl := gomock.NewController(t)
	history := mocks.NewMockHistoryStore(ctrl)
	history.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	history.EXPECT().Get(gomock.Any(), gomock.Any()).Return([]domain.Message{}, nil).AnyTimes()

	log := slog.New(slog.DiscardHandler)
	o := runtime.NewOrchestrator(log, workers.NewSupervisor(log, 100*time.Millisecond),
		runtime.NewRoomRegistry(0), history, 1000, 0)
	go func() { _ = o.Start(ctx) }()

	numClients := 50
	messagesPerClient := 100

	sinks := make([]*orderSink, numClients)
	for i := range sinks {
		conn := domain.ConnectionID(fmt.Sprintf("conn-%d", i))
		sinks[i] = &orderSink{byAuthor: make(map[string][]string)}
		req.NoError(o.Dispatch(ctx, chat.ConnectCommand{Conn: conn, Sink: sinks[i]}))
		req.NoError(o.Dispatch(ctx, chat.JoinRoomCommand{Conn: conn, Username: fmt.Sprintf("user-%d", i), Room: domain.DefaultRoom}))
	}

	var successCount atomic.Uint64
	var failureCount atomic.Uint64
	start := time.Now()
	var wg sync.WaitGroup

	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			conn := domain.ConnectionID(fmt.Sprintf("conn-%d", clientID))
			for j := 0; j < messagesPerClient; j++ {
				cmd := chat.SendMessageCommand{Conn: conn, Text: fmt.Sprintf("%d", j)}
				if err := o.Dispatch(ctx, cmd); err != nil {
					failureCount.Add(1)
				} else {
					successCount.Add(1)
				}
			}
		}(i)
	}
	wg.Wait()

	expected := numClients * messagesPerClient
	for _, sink := range sinks {
		req.Eventually(func() bool { return sink.count() == expected }, 10*time.Second, 10*time.Millisecond)
	}
	duration := time.Since(start)

	// Every member saw every author's messages in the order they were sent
	for _, sink := range sinks {
		for author, texts := range sink.byAuthor {
			req.Len(texts, messagesPerClient, author)
			for j, text := range texts {
				req.Equal(fmt.Sprintf("%d", j), text, author)
			}
		}
	}

	req.Zero(failureCount.Load())
	t.Logf("%d messages relayed to %d members in %v (%.2f msg/sec)",
		successCount.Load(), numClients, duration, float64(successCount.Load())/duration.Seconds())
}
