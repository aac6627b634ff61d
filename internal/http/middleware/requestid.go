package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the header used to propagate request IDs.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the key the request ID is stored under in Fiber's
	// context locals.
	RequestIDLocalKey = "request_id"
)

// RequestID ensures every request carries a request ID: it reads X-Request-ID
// from the incoming request, generates a UUID if absent, stores the value in
// context locals and echoes it on the response header.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
