package workers

import (
	"chat-relay/contract"
	"chat-relay/domain/chat"
	"context"
	"log/slog"
)

// Ensure *SessionWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*SessionWorker)(nil)

// CommandHandler applies one command to completion.
type CommandHandler interface {
	Handle(ctx context.Context, cmd chat.Command)
}

// SessionWorker drains the command queue and hands commands to the handler one
// by one. Exactly one SessionWorker must consume a given queue: it is the
// single writer of the coordination state.
type SessionWorker struct {
	handler  CommandHandler
	commands chan chat.Command
	log      *slog.Logger
}

func NewSessionWorker(handler CommandHandler, commands chan chat.Command, log *slog.Logger) *SessionWorker {
	return &SessionWorker{
		handler:  handler,
		commands: commands,
		log:      log,
	}
}

func (w *SessionWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping session worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Command channel is closed")
				return nil
			}
			w.handler.Handle(ctx, cmd)
		}
	}
}
