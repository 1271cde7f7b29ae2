package middleware

import (
	"marketplace-booking/types"
	"marketplace-booking/utils"

	"github.com/gofiber/fiber/v2"
)

// RequestSink receives request log entries for asynchronous persistence.
type RequestSink interface {
	Log(types.LogEntry)
}

// RequestLog records every request/response pair through the async logger
// once the handler chain has finished.
func RequestLog(sink RequestSink) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		sink.Log(utils.CreateLogEntry(c))
		return err
	}
}
