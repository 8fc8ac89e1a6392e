package websocket

import (
	"github.com/gofiber/fiber/v2"
)

func (s *Server) Health(c *fiber.Ctx) error {
	stats := s.relay.Stats()
	return c.JSON(fiber.Map{
		"status":      "ok",
		"connections": stats.Connections,
		"rooms":       stats.Rooms,
		"users":       stats.Users,
	})
}

func (s *Server) ListRooms(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"rooms": s.relay.Rooms()})
}

func (s *Server) RoomMessages(c *fiber.Ctx) error {
	room := c.Params("room")
	if !s.relay.RoomExists(room) {
		return fiber.NewError(fiber.StatusNotFound, "Room not found")
	}
	messages, err := s.relay.History(c.UserContext(), room)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"room": room, "messages": ToMessages(messages)})
}

func (s *Server) RoomUsers(c *fiber.Ctx) error {
	room := c.Params("room")
	if !s.relay.RoomExists(room) {
		return fiber.NewError(fiber.StatusNotFound, "Room not found")
	}
	return c.JSON(fiber.Map{"room": room, "users": ToUsers(s.relay.UsersInRoom(room))})
}
