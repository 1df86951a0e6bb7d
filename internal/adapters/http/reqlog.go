package http

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	loggerKey
)

const sessionsPrefix = "/v1/sessions/"

// RequestIDLogMiddleware stores a request-scoped logger in the user context.
// The logger carries the Fiber request ID and, for session routes, the
// session ID taken from the path.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var attrs []any
		rid, _ := c.Locals("requestid").(string)
		if rid != "" {
			attrs = append(attrs, "request_id", rid)
		}
		if sid := sessionFromPath(c.Path()); sid != "" {
			attrs = append(attrs, "session", sid)
		}
		if len(attrs) == 0 {
			return c.Next()
		}

		ctx := c.UserContext()
		if rid != "" {
			ctx = context.WithValue(ctx, requestIDKey, rid)
		}
		ctx = context.WithValue(ctx, loggerKey, slog.Default().With(attrs...))
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func sessionFromPath(path string) string {
	rest, ok := strings.CutPrefix(path, sessionsPrefix)
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, "/")
	return id
}

// LoggerFromCtx returns the request-scoped logger, or the default logger.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// RequestIDFromCtx returns the request ID stored by RequestIDLogMiddleware.
func RequestIDFromCtx(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey).(string)
	return rid
}
