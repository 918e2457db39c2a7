package handler

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RequireServiceKey guards mutating routes with a static bearer token. An
// empty key disables the check, matching deployments where the platform
// gateway already authenticates callers.
func RequireServiceKey(serviceKey string) fiber.Handler {
	key := strings.TrimSpace(serviceKey)

	return func(c *fiber.Ctx) error {
		if key == "" {
			return c.Next()
		}

		auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(key)) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid service key")
		}

		return c.Next()
	}
}
