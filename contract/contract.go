//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is the delivery end of one connection.
// Send must never block; it reports false when the event was dropped.
type EventSink interface {
	Send(e event.Event) bool
}

// HistoryStore keeps the ordered messages of every room.
type HistoryStore interface {
	Append(ctx context.Context, message domain.Message) error
	Get(ctx context.Context, room string) ([]domain.Message, error)
}

// Broadcaster delivers events to connections, never raising delivery failures.
type Broadcaster interface {
	ToRoom(room string, except domain.ConnectionID, e event.Event)
	ToConnection(id domain.ConnectionID, e event.Event)
	ToAll(e event.Event)
}

// TextFilter rewrites message text before it becomes a Message.
type TextFilter interface {
	Censor(text string) string
}
