package instrument

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tourism-backend/internal/logger"
)

// Middleware returns a Fiber middleware that sets up tracing for each request.
// It propagates or generates X-Trace-ID, puts the instrumenter and a
// request-scoped logger in the user context, and wraps the handler in a root span.
func Middleware(inst Instrumenter, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get("X-Trace-ID")
		if traceID == "" {
			traceID = newUUID()
		}

		ctx := c.UserContext()
		ctx = WithTraceID(ctx, traceID)
		ctx = WithInstrumenter(ctx, inst)
		ctx = logger.ContextWithLogger(ctx, log.With(zap.String("trace_id", traceID)))

		ctx, span := inst.StartSpan(ctx, "http", "handler", "request")
		span.SetMetadata("method", c.Method())
		span.SetMetadata("path", c.Path())
		c.SetUserContext(ctx)
		c.Set("X-Trace-ID", traceID)

		err := c.Next()

		statusCode := c.Response().StatusCode()
		span.SetMetadata("status_code", statusCode)
		if err != nil || statusCode >= 400 {
			span.SetStatus("error")
		}
		span.End()

		return err
	}
}
