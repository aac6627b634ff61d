package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docshare/internal/auth"
)

const (
	// SessionLocalKey is the key the resolved *auth.Session is stored under
	// in Fiber's context locals.
	SessionLocalKey = "session"
	// IdentityLocalKey holds just the resolved user ID.
	IdentityLocalKey = "user_id"
)

// Authenticate resolves the Bearer token on each request to a session and
// stores it in context locals. Requests without a valid token are rejected
// with 401 so clients know to re-establish their session.
func Authenticate(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		sess, err := svc.Verify(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired session")
		}

		c.Locals(SessionLocalKey, sess)
		c.Locals(IdentityLocalKey, sess.UserID)

		return c.Next()
	}
}

// SessionFromCtx returns the session stored by Authenticate, or nil.
func SessionFromCtx(c *fiber.Ctx) *auth.Session {
	sess, _ := c.Locals(SessionLocalKey).(*auth.Session)
	return sess
}

// IdentityFromCtx returns the authenticated user ID, or "".
func IdentityFromCtx(c *fiber.Ctx) string {
	id, _ := c.Locals(IdentityLocalKey).(string)
	return id
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
