// Package event defines the outbound events the coordinator produces.
package event

import (
	"chat-relay/domain"
)

// Names as they travel on the wire.
const (
	PreviousMessagesName  = "previous_messages"
	NewMessageName        = "new_message"
	UserJoinedName        = "user_joined"
	UserLeftName          = "user_left"
	UserTypingName        = "user_typing"
	RoomListUpdateName    = "room_list_update"
	RoomCreationErrorName = "room_creation_error"
	ErrorName             = "error"
)

type Event interface {
	Name() string
}

// PreviousMessages replays a room history to a joining connection.
type PreviousMessages struct {
	Room     string
	Messages []domain.Message
}

func (PreviousMessages) Name() string { return PreviousMessagesName }

type NewMessage struct {
	Message domain.Message
}

func (NewMessage) Name() string { return NewMessageName }

// UserJoined carries the room presence after the join, joiner included.
type UserJoined struct {
	Username string
	Users    []domain.User
}

func (UserJoined) Name() string { return UserJoinedName }

// UserLeft carries the room presence after the departure.
type UserLeft struct {
	Username string
	Users    []domain.User
}

func (UserLeft) Name() string { return UserLeftName }

type UserTyping struct {
	Username string
	IsTyping bool
}

func (UserTyping) Name() string { return UserTypingName }

// RoomListUpdate lists every room, default room first then creation order.
type RoomListUpdate struct {
	Rooms []string
}

func (RoomListUpdate) Name() string { return RoomListUpdateName }

type RoomCreationError struct {
	Reason string
}

func (RoomCreationError) Name() string { return RoomCreationErrorName }

// Error reports a rejected inbound frame to its sender.
type Error struct {
	Message string
}

func (Error) Name() string { return ErrorName }
