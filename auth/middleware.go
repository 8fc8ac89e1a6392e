package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UsernameLocal is the fiber local holding the authenticated username.
const UsernameLocal = "username"

// Middleware rejects requests without a valid bearer token and stores the
// token's username in the request locals. The token is read from the
// Authorization header, or from the token query parameter since browsers
// cannot set headers on a WebSocket handshake.
// An empty secret disables authentication.
func Middleware(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(secret) == 0 {
			return c.Next()
		}

		tokenStr := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}
		if tokenStr == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authorization token is missing")
		}

		claims, err := ValidateToken(secret, tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(UsernameLocal, claims.Username)
		return c.Next()
	}
}
