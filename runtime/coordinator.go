package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/chat"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Coordinator applies inbound commands to the presence table, the history
// store and the room registry, then fans the resulting events out.
//
// Coordinator is NOT safe for concurrent use: one command is handled at a time
// by a single SessionWorker, which makes every transition atomic and keeps
// broadcasts of a room in processing order.
type Coordinator struct {
	log         *slog.Logger
	rooms       *RoomRegistry
	presence    *PresenceTable
	history     contract.HistoryStore
	connections *ConnectionRegistry
	broadcaster contract.Broadcaster
	filter      contract.TextFilter
	detectLang  func(text string) string
	now         func() time.Time
	newID       func() uuid.UUID
}

func NewCoordinator(log *slog.Logger, rooms *RoomRegistry, presence *PresenceTable,
	history contract.HistoryStore, connections *ConnectionRegistry,
	broadcaster contract.Broadcaster) *Coordinator {
	return &Coordinator{
		log:         log,
		rooms:       rooms,
		presence:    presence,
		history:     history,
		connections: connections,
		broadcaster: broadcaster,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.New,
	}
}

// WithTextFilter censors message text before messages are built.
func (c *Coordinator) WithTextFilter(filter contract.TextFilter) *Coordinator {
	c.filter = filter
	return c
}

// WithLanguageDetector tags messages with the language of their text.
func (c *Coordinator) WithLanguageDetector(detect func(text string) string) *Coordinator {
	c.detectLang = detect
	return c
}

// WithClock replaces the time source used for message timestamps.
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// Handle processes one command to completion, fan-out included.
func (c *Coordinator) Handle(ctx context.Context, cmd chat.Command) {
	switch cmd := cmd.(type) {
	case chat.ConnectCommand:
		c.connect(cmd)
	case chat.JoinRoomCommand:
		c.joinRoom(ctx, cmd)
	case chat.LeaveRoomCommand:
		c.leaveRoom(cmd)
	case chat.SendMessageCommand:
		c.sendMessage(ctx, cmd)
	case chat.TypingCommand:
		c.typing(cmd)
	case chat.CreateRoomCommand:
		c.createRoom(cmd)
	case chat.DisconnectCommand:
		c.disconnect(cmd)
	default:
		c.log.Warn("Unknown command dropped", "type", fmt.Sprintf("%T", cmd))
	}
}

func (c *Coordinator) connect(cmd chat.ConnectCommand) {
	c.connections.Register(cmd.Conn, cmd.Sink)
	c.broadcaster.ToConnection(cmd.Conn, event.RoomListUpdate{Rooms: c.rooms.List()})
	c.log.Debug("Connection registered", "conn", cmd.Conn)
}

func (c *Coordinator) joinRoom(ctx context.Context, cmd chat.JoinRoomCommand) {
	if !c.rooms.Exists(cmd.Room) {
		c.log.Warn("Join to unregistered room dropped", "conn", cmd.Conn, "room", cmd.Room, "error", errors.ErrUnknownRoom)
		return
	}

	// Presence is not touched until history has been read.
	messages, err := c.history.Get(ctx, cmd.Room)
	if err != nil {
		c.log.Error("History unavailable, replaying nothing", "room", cmd.Room, "error", err)
		messages = []domain.Message{}
	}

	prev, switched := c.presence.RemoveUser(cmd.Conn)
	c.presence.SetUser(domain.User{
		ConnectionID: cmd.Conn,
		Username:     cmd.Username,
		Room:         cmd.Room,
	})

	if switched {
		c.broadcaster.ToRoom(prev.Room, cmd.Conn, event.UserLeft{
			Username: prev.Username,
			Users:    c.usersInRoomExcept(prev.Room, cmd.Conn),
		})
	}
	c.broadcaster.ToConnection(cmd.Conn, event.PreviousMessages{Room: cmd.Room, Messages: messages})

	c.broadcaster.ToRoom(cmd.Room, "", event.UserJoined{
		Username: cmd.Username,
		Users:    c.presence.UsersInRoom(cmd.Room),
	})
	c.log.Info(fmt.Sprintf("%s joined room: %s", cmd.Username, cmd.Room), "conn", cmd.Conn)
}

func (c *Coordinator) leaveRoom(cmd chat.LeaveRoomCommand) {
	user, ok := c.presence.RemoveUser(cmd.Conn)
	if !ok {
		return
	}
	c.broadcaster.ToRoom(user.Room, "", event.UserLeft{
		Username: user.Username,
		Users:    c.presence.UsersInRoom(user.Room),
	})
	c.log.Info(fmt.Sprintf("%s left room: %s", user.Username, user.Room), "conn", cmd.Conn)
}

func (c *Coordinator) sendMessage(ctx context.Context, cmd chat.SendMessageCommand) {
	user, ok := c.presence.Get(cmd.Conn)
	if !ok {
		// Not in a room, usually a race with a disconnect
		return
	}

	text := cmd.Text
	if c.filter != nil {
		text = c.filter.Censor(text)
	}
	message := domain.Message{
		ID:        c.newID(),
		Username:  user.Username,
		Text:      text,
		Room:      user.Room,
		CreatedAt: c.now(),
	}
	if c.detectLang != nil {
		message.Lang = c.detectLang(cmd.Text)
	}

	if err := c.history.Append(ctx, message); err != nil {
		c.log.Error("Message not recorded in history", "room", user.Room, "id", message.ID, "error", err)
	}
	c.broadcaster.ToRoom(user.Room, "", event.NewMessage{Message: message})
}

func (c *Coordinator) typing(cmd chat.TypingCommand) {
	user, ok := c.presence.Get(cmd.Conn)
	if !ok {
		return
	}
	c.broadcaster.ToRoom(user.Room, cmd.Conn, event.UserTyping{
		Username: user.Username,
		IsTyping: cmd.IsTyping,
	})
}

func (c *Coordinator) createRoom(cmd chat.CreateRoomCommand) {
	name, err := c.rooms.Create(cmd.Name)
	if err != nil {
		c.log.Debug("Room creation rejected", "conn", cmd.Conn, "name", cmd.Name, "error", err)
		c.broadcaster.ToConnection(cmd.Conn, event.RoomCreationError{Reason: errors.Reason(err)})
		return
	}
	c.log.Info(fmt.Sprintf("New room created: %s", name))
	c.broadcaster.ToAll(event.RoomListUpdate{Rooms: c.rooms.List()})
}

// usersInRoomExcept lists a room as it was before id arrived in it.
func (c *Coordinator) usersInRoomExcept(room string, id domain.ConnectionID) []domain.User {
	users := c.presence.UsersInRoom(room)
	return lo.Filter(users, func(u domain.User, _ int) bool { return u.ConnectionID != id })
}

func (c *Coordinator) disconnect(cmd chat.DisconnectCommand) {
	c.connections.Unregister(cmd.Conn)

	user, ok := c.presence.RemoveUser(cmd.Conn)
	if !ok {
		return
	}
	c.broadcaster.ToRoom(user.Room, "", event.UserLeft{
		Username: user.Username,
		Users:    c.presence.UsersInRoom(user.Room),
	})
	c.log.Info(fmt.Sprintf("%s disconnected from %s", user.Username, user.Room), "conn", cmd.Conn)
}
