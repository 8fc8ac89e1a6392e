// Package chat holds the inbound commands a connection can issue.
package chat

import (
	"chat-relay/contract"
	"chat-relay/domain"
)

// Command is an inbound intent coming from one connection.
// Commands of the same connection are processed in arrival order.
type Command interface {
	ConnectionID() domain.ConnectionID
}

// ConnectCommand hands the connection's delivery sink over to the coordinator.
type ConnectCommand struct {
	Conn domain.ConnectionID
	Sink contract.EventSink
}

func (c ConnectCommand) ConnectionID() domain.ConnectionID { return c.Conn }

type JoinRoomCommand struct {
	Conn     domain.ConnectionID
	Username string
	Room     string
}

func (c JoinRoomCommand) ConnectionID() domain.ConnectionID { return c.Conn }

// LeaveRoomCommand takes the connection out of its room. The connection stays
// open and may join again.
type LeaveRoomCommand struct {
	Conn domain.ConnectionID
}

func (c LeaveRoomCommand) ConnectionID() domain.ConnectionID { return c.Conn }

type SendMessageCommand struct {
	Conn domain.ConnectionID
	Text string
}

func (c SendMessageCommand) ConnectionID() domain.ConnectionID { return c.Conn }

type TypingCommand struct {
	Conn     domain.ConnectionID
	IsTyping bool
}

func (c TypingCommand) ConnectionID() domain.ConnectionID { return c.Conn }

type CreateRoomCommand struct {
	Conn domain.ConnectionID
	Name string
}

func (c CreateRoomCommand) ConnectionID() domain.ConnectionID { return c.Conn }

// DisconnectCommand is terminal for a connection and safe to repeat.
type DisconnectCommand struct {
	Conn domain.ConnectionID
}

func (c DisconnectCommand) ConnectionID() domain.ConnectionID { return c.Conn }
