package websocket

import (
	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/domain/chat"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	"fmt"
	"time"

	fiberws "github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const writeTimeout = 10 * time.Second

// HandleWebSocket runs one connection: Connect on open, one command per
// valid frame, Disconnect on close. Outbound events are written by a
// dedicated pump draining the connection's sink.
func (s *Server) HandleWebSocket(c *fiberws.Conn) {
	id := domain.ConnectionID(uuid.NewString())
	username, authenticated := c.Locals(auth.UsernameLocal).(string)
	authenticated = authenticated && username != ""
	sink := NewSink(s.cfg.ConnectionBufferSize)

	ctx, cancel := context.WithCancel(context.Background())
	s.track(id, c)
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		s.writePump(ctx, id, c, sink)
	}()

	defer func() {
		s.disconnect(id)
		sink.Close()
		cancel()
		<-pumpDone
		s.untrack(id)
		s.log.Info("WebSocket disconnected", "conn", id)
	}()

	if err := s.relay.Dispatch(ctx, chat.ConnectCommand{Conn: id, Sink: sink}); err != nil {
		s.log.Error("Connect not dispatched", "conn", id, "error", err)
		return
	}
	s.log.Info("WebSocket connected", "conn", id, "authenticated", authenticated)

	for {
		if s.cfg.ReadTimeout > 0 {
			_ = c.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		}
		_, frame, err := c.ReadMessage()
		if err != nil {
			if fiberws.IsUnexpectedCloseError(err, fiberws.CloseGoingAway, fiberws.CloseNormalClosure) {
				s.log.Debug("WebSocket read failed", "conn", id, "error", err)
			}
			return
		}

		cmd, err := s.toCommand(id, frame, username, authenticated)
		if err != nil {
			s.log.Debug("Frame rejected", "conn", id, "error", err)
			sink.Send(event.Error{Message: err.Error()})
			continue
		}
		if err := s.relay.Dispatch(ctx, cmd); err != nil {
			return
		}
	}
}

// disconnect waits for room in the command queue as long as the server lives.
// Only Shutdown can make it give up.
func (s *Server) disconnect(id domain.ConnectionID) {
	if err := s.relay.Dispatch(s.lifetime, chat.DisconnectCommand{Conn: id}); err != nil {
		s.log.Error("Disconnect not dispatched", "conn", id, "error", err)
	}
}

func (s *Server) writePump(ctx context.Context, id domain.ConnectionID, c *fiberws.Conn, sink *Sink) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-sink.Events():
			frame, err := Encode(e)
			if err != nil {
				s.log.Error("Event not encoded", "conn", id, "event", e.Name(), "error", err)
				continue
			}
			_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.WriteMessage(fiberws.TextMessage, frame); err != nil {
				s.log.Debug("WebSocket write failed", "conn", id, "error", err)
				return
			}
		}
	}
}

// toCommand validates a frame and turns it into a command. An authenticated
// username replaces the one of a join_room payload.
func (s *Server) toCommand(id domain.ConnectionID, frame []byte, username string, authenticated bool) (chat.Command, error) {
	env, err := Decode(frame)
	if err != nil {
		return nil, err
	}

	switch env.Event {
	case JoinRoomEvent:
		var req auth.JoinRoomRequest
		if err := DecodeData(env, &req); err != nil {
			return nil, err
		}
		if err := auth.ValidateJoinRoom(req, authenticated); err != nil {
			return nil, err
		}
		if authenticated {
			req.Username = username
		}
		return chat.JoinRoomCommand{Conn: id, Username: req.Username, Room: req.Room}, nil
	case LeaveRoomEvent:
		return chat.LeaveRoomCommand{Conn: id}, nil
	case SendMessageEvent:
		var text string
		if err := DecodeData(env, &text); err != nil {
			return nil, err
		}
		if err := auth.ValidateMessage(text, s.cfg.MaxContentLength); err != nil {
			return nil, err
		}
		return chat.SendMessageCommand{Conn: id, Text: text}, nil
	case TypingEvent:
		var isTyping bool
		if err := DecodeData(env, &isTyping); err != nil {
			return nil, err
		}
		return chat.TypingCommand{Conn: id, IsTyping: isTyping}, nil
	case CreateRoomEvent, CreateRoomAliasEvent:
		var name string
		if err := DecodeData(env, &name); err != nil {
			return nil, err
		}
		return chat.CreateRoomCommand{Conn: id, Name: name}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownEvent, env.Event)
	}
}
