package websocket

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
)

// Inbound event names.
const (
	JoinRoomEvent        = "join_room"
	LeaveRoomEvent       = "leave_room"
	SendMessageEvent     = "send_message"
	TypingEvent          = "typing"
	CreateRoomEvent      = "create_room"
	CreateRoomAliasEvent = "create-room"
)

// Envelope is the JSON frame exchanged in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type Message struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Room      string `json:"room"`
	Lang      string `json:"lang,omitempty"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Room     string `json:"room"`
}

type Presence struct {
	Username string `json:"username"`
	Users    []User `json:"users"`
}

type Typing struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

func ToMessage(m domain.Message) Message {
	return Message{
		ID:        m.ID.String(),
		Username:  m.Username,
		Text:      m.Text,
		Room:      m.Room,
		Lang:      m.Lang,
		Timestamp: m.CreatedAt.UnixMilli(),
	}
}

func ToMessages(messages []domain.Message) []Message {
	return lo.Map(messages, func(item domain.Message, _ int) Message {
		return ToMessage(item)
	})
}

func ToUsers(users []domain.User) []User {
	return lo.Map(users, func(item domain.User, _ int) User {
		return User{ID: item.ConnectionID.String(), Username: item.Username, Room: item.Room}
	})
}

// Encode turns an outbound event into a frame.
func Encode(e event.Event) ([]byte, error) {
	var data any
	switch evt := e.(type) {
	case event.PreviousMessages:
		data = ToMessages(evt.Messages)
	case event.NewMessage:
		data = ToMessage(evt.Message)
	case event.UserJoined:
		data = Presence{Username: evt.Username, Users: ToUsers(evt.Users)}
	case event.UserLeft:
		data = Presence{Username: evt.Username, Users: ToUsers(evt.Users)}
	case event.UserTyping:
		data = Typing{Username: evt.Username, IsTyping: evt.IsTyping}
	case event.RoomListUpdate:
		data = evt.Rooms
	case event.RoomCreationError:
		data = evt.Reason
	case event.Error:
		data = evt.Message
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownEvent, e.Name())
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: e.Name(), Data: raw})
}

// Decode parses a frame. Payload decoding is left to the caller.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("%w: missing event name", errors.ErrInvalidPayload)
	}
	return env, nil
}

// DecodeData unmarshals the payload of env into v.
func DecodeData(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: %s without data", errors.ErrInvalidPayload, env.Event)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrInvalidPayload, env.Event, err)
	}
	return nil
}
