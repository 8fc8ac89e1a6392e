package main

import (
	"chat-relay/infrastructure/websocket"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

var (
	errUsage          = errors.New("usage: /room NAME, /leave, /create NAME, /rooms, /quit")
	errUnknownCommand = errors.New("unknown command")
)

// Session holds what the terminal shows: the current room and the room list.
type Session struct {
	mu       sync.Mutex
	username string
	room     string
	rooms    []string
	out      io.Writer
}

func NewSession(username string, out io.Writer) *Session {
	return &Session{username: username, out: out}
}

func (s *Session) Join(room string) websocket.Envelope {
	s.mu.Lock()
	s.room = room
	s.mu.Unlock()
	return envelope(websocket.JoinRoomEvent, map[string]string{"username": s.username, "room": room})
}

// Parse turns one input line into the frame to send. Local commands return
// a nil envelope.
func (s *Session) Parse(line string) (*websocket.Envelope, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false, nil
	}
	if !strings.HasPrefix(line, "/") {
		return lo.ToPtr(envelope(websocket.SendMessageEvent, line)), false, nil
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch command {
	case "/quit":
		return nil, true, nil
	case "/rooms":
		s.mu.Lock()
		defer s.mu.Unlock()
		s.printRooms()
		return nil, false, nil
	case "/room":
		if arg == "" {
			return nil, false, errUsage
		}
		return lo.ToPtr(s.Join(arg)), false, nil
	case "/leave":
		return &websocket.Envelope{Event: websocket.LeaveRoomEvent}, false, nil
	case "/create":
		if arg == "" {
			return nil, false, errUsage
		}
		return lo.ToPtr(envelope(websocket.CreateRoomEvent, arg)), false, nil
	default:
		return nil, false, fmt.Errorf("%w %s, %v", errUnknownCommand, command, errUsage)
	}
}

func (s *Session) Warn(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, color.FgRed.Render(msg))
}

// Render prints one inbound frame.
func (s *Session) Render(env websocket.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch env.Event {
	case "previous_messages":
		var messages []websocket.Message
		if err := json.Unmarshal(env.Data, &messages); err != nil {
			return err
		}
		s.printHistory(messages)
	case "new_message":
		var message websocket.Message
		if err := json.Unmarshal(env.Data, &message); err != nil {
			return err
		}
		fmt.Fprintln(s.out, formatMessage(message))
	case "user_joined", "user_left":
		var presence websocket.Presence
		if err := json.Unmarshal(env.Data, &presence); err != nil {
			return err
		}
		verb := "joined"
		if env.Event == "user_left" {
			verb = "left"
		}
		names := lo.Map(presence.Users, func(u websocket.User, _ int) string { return u.Username })
		fmt.Fprintln(s.out, color.FgGray.Render(fmt.Sprintf("%s %s %s (online: %s)",
			presence.Username, verb, s.room, strings.Join(names, ", "))))
	case "user_typing":
		var typing websocket.Typing
		if err := json.Unmarshal(env.Data, &typing); err != nil {
			return err
		}
		if typing.IsTyping {
			fmt.Fprintln(s.out, color.FgGray.Render(typing.Username+" is typing..."))
		}
	case "room_list_update":
		if err := json.Unmarshal(env.Data, &s.rooms); err != nil {
			return err
		}
		s.printRooms()
	case "room_creation_error", "error":
		var reason string
		if err := json.Unmarshal(env.Data, &reason); err != nil {
			return err
		}
		fmt.Fprintln(s.out, color.FgRed.Render(reason))
	default:
		fmt.Fprintln(s.out, color.FgYellow.Render("unhandled event "+env.Event))
	}
	return nil
}

func formatMessage(m websocket.Message) string {
	at := time.UnixMilli(m.Timestamp).Format(time.TimeOnly)
	line := fmt.Sprintf("[%s] %s: %s", at, color.New(color.FgCyan, color.OpBold).Render(m.Username), m.Text)
	if m.Lang != "" {
		line += color.FgGray.Render(" (" + m.Lang + ")")
	}
	return line
}

func (s *Session) printHistory(messages []websocket.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(s.out, color.FgGray.Render("No previous messages in "+s.room))
		return
	}
	table := newTable(s.out, "Time", "User", "Message")
	for _, m := range messages {
		table.Append([]string{time.UnixMilli(m.Timestamp).Format(time.TimeOnly), m.Username, m.Text})
	}
	table.Render()
}

func (s *Session) printRooms() {
	table := newTable(s.out, "Room", "")
	for _, room := range s.rooms {
		marker := ""
		if room == s.room {
			marker = "*"
		}
		table.Append([]string{room, marker})
	}
	table.Render()
}

func newTable(out io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
