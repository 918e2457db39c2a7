package transport

import (
	"strings"

	"github.com/claimdesk/claim-notifier/internal/observability"
	"github.com/gofiber/fiber/v2"
)

// CorrelationContext copies the request id assigned by the requestid
// middleware into the user context, so anything downstream that logs through
// observability.WithContextLogger carries it automatically.
func CorrelationContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		correlationID := strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
		if correlationID == "" {
			if value, ok := c.Locals("requestid").(string); ok {
				correlationID = strings.TrimSpace(value)
			}
		}
		if correlationID != "" {
			c.SetUserContext(observability.WithCorrelationID(c.UserContext(), correlationID))
		}

		return c.Next()
	}
}
