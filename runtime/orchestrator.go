// Package runtime handles session coordination, presence, history and fan-out.
// It serializes every state change through a single supervised worker.
package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/chat"
	"chat-relay/runtime/workers"
	"context"
	"log/slog"
	"sync"
	"time"
)

type Orchestrator struct {
	mu            sync.Mutex
	log           *slog.Logger
	supervisor    contract.ISupervisor
	coordinator   *Coordinator
	rooms         *RoomRegistry
	presence      *PresenceTable
	history       contract.HistoryStore
	connections   *ConnectionRegistry
	commands      chan chat.Command
	statsInterval time.Duration
	started       bool
}

// NewOrchestrator builds the whole coordination core around one command queue of bufferSize.
func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	rooms *RoomRegistry, history contract.HistoryStore,
	bufferSize int, statsInterval time.Duration) *Orchestrator {
	presence := NewPresenceTable()
	connections := NewConnectionRegistry()
	fanout := NewFanout(log, connections, presence)
	return &Orchestrator{
		log:           log,
		supervisor:    supervisor,
		coordinator:   NewCoordinator(log, rooms, presence, history, connections, fanout),
		rooms:         rooms,
		presence:      presence,
		history:       history,
		connections:   connections,
		commands:      make(chan chat.Command, bufferSize),
		statsInterval: statsInterval,
	}
}

// Coordinator exposes the coordinator for optional wiring (filters, language detection).
func (o *Orchestrator) Coordinator() *Coordinator {
	return o.coordinator
}

// Dispatch enqueues a command, blocking while the queue is full.
// Commands are never dropped: a lost Disconnect would leak presence.
func (o *Orchestrator) Dispatch(ctx context.Context, cmd chat.Command) error {
	select {
	case o.commands <- cmd:
		return nil
	case <-ctx.Done():
		o.log.Warn("Command not dispatched", "conn", cmd.ConnectionID(), "error", ctx.Err())
		return ctx.Err()
	}
}

// Start registers the session worker (and the stats worker when an interval
// is set) then blocks running the supervisor until ctx is canceled.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return nil
	}
	o.started = true
	o.supervisor.Add(workers.NewSessionWorker(o.coordinator, o.commands, o.log))
	if o.statsInterval > 0 {
		o.supervisor.Add(workers.NewStatsWorker(o, o.statsInterval, o.log))
	}
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

// Stop cancels the supervised context; workers stop at their next select.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}

func (o *Orchestrator) Rooms() []string {
	return o.rooms.List()
}

func (o *Orchestrator) RoomExists(room string) bool {
	return o.rooms.Exists(room)
}

func (o *Orchestrator) History(ctx context.Context, room string) ([]domain.Message, error) {
	return o.history.Get(ctx, room)
}

func (o *Orchestrator) UsersInRoom(room string) []domain.User {
	return o.presence.UsersInRoom(room)
}

func (o *Orchestrator) Stats() domain.RelayStats {
	return domain.RelayStats{
		Connections: o.connections.Len(),
		Rooms:       o.rooms.Len(),
		Users:       o.presence.Len(),
		QueueSize:   len(o.commands),
		MaxCapacity: cap(o.commands),
	}
}
