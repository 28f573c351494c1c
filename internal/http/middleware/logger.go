package middleware

import (
	"io"
	"time"

	"marketapi/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"
)

// ErrorLocalKey holds an internal error a handler answered with 500, for the access log.
const ErrorLocalKey = "handler_error"

// Logger writes one access log entry per request through log.
// Fields: request_id, method, path, status, latency (ms), user_id when known, trace_id when
// the request is sampled, error when set.
func Logger(log *logger.Logger) fiber.Handler {
	log = log.Component("http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		reqLog := log.WithRequestID(GetRequestID(c))
		kv := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", float64(time.Since(start).Microseconds()) / 1000,
		}
		if u := CurrentUser(c); u != nil {
			kv = append(kv, "user_id", u.ID)
		}
		if sc := trace.SpanContextFromContext(c.UserContext()); sc.HasTraceID() {
			kv = append(kv, "trace_id", sc.TraceID().String())
		}
		if herr, ok := c.Locals(ErrorLocalKey).(error); ok {
			kv = append(kv, "error", herr.Error())
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			reqLog.Error("request", kv...)
		case status >= fiber.StatusBadRequest:
			reqLog.Warn("request", kv...)
		default:
			reqLog.Info("request", kv...)
		}
		return err
	}
}

// LoggerWithWriter logs JSON lines to w with timestamps in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logger.New(logger.Options{Writer: w, Location: loc, Level: "debug"}))
}
