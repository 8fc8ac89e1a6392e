// Package websocket exposes the relay over WebSocket frames and a small
// read-only REST API, both served by fiber.
package websocket

import (
	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/domain/chat"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	fiberws "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Relay is what the transport needs from the coordination core.
type Relay interface {
	Dispatch(ctx context.Context, cmd chat.Command) error
	Rooms() []string
	RoomExists(room string) bool
	History(ctx context.Context, room string) ([]domain.Message, error)
	UsersInRoom(room string) []domain.User
	Stats() domain.RelayStats
}

type Config struct {
	ConnectionBufferSize int
	MaxContentLength     int
	AuthSecret           []byte
	ReadTimeout          time.Duration // 0 disables the idle timeout
}

type Server struct {
	app   *fiber.App
	relay Relay
	cfg   Config
	log   *slog.Logger

	mu    sync.Mutex
	conns map[domain.ConnectionID]*fiberws.Conn

	lifetime context.Context
	stop     context.CancelFunc
}

func NewServer(log *slog.Logger, relay Relay, cfg Config) *Server {
	lifetime, stop := context.WithCancel(context.Background())
	s := &Server{
		relay:    relay,
		cfg:      cfg,
		log:      log,
		conns:    make(map[domain.ConnectionID]*fiberws.Conn),
		lifetime: lifetime,
		stop:     stop,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "chat-relay",
		DisableStartupMessage: true,
		UnescapePath:          true,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(cors.New())
	s.registerRoutes()
	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.log.Info("Relay listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) Listener(ln net.Listener) error {
	s.log.Info("Relay listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// Shutdown closes every open socket, which disconnects their sessions, then
// stops the HTTP server. Disconnects still waiting for the queue are abandoned
// once it returns.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.stop()
	s.mu.Lock()
	for id, conn := range s.conns {
		if err := conn.Close(); err != nil {
			s.log.Debug("Socket already closed", "conn", id, "error", err)
		}
	}
	s.mu.Unlock()

	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	s.log.Info("Relay stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.Health)

	s.app.Use("/ws", auth.Middleware(s.cfg.AuthSecret), func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws", fiberws.New(s.HandleWebSocket))

	api := s.app.Group("/api", auth.Middleware(s.cfg.AuthSecret))
	api.Get("/rooms", s.ListRooms)
	api.Get("/rooms/:room/messages", s.RoomMessages)
	api.Get("/rooms/:room/users", s.RoomUsers)
}

func (s *Server) track(id domain.ConnectionID, conn *fiberws.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[id] = conn
}

func (s *Server) untrack(id domain.ConnectionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, id)
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("HTTP error", "code", code, "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}
