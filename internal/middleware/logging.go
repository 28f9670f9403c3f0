package middleware

import (
	"PabrikGolang/pkg/log"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type loggingMiddleware struct {
	logger *logrus.Logger
}

func newLoggingMiddleware(logger *logrus.Logger) *loggingMiddleware {
	return &loggingMiddleware{
		logger: logger,
	}
}

// NewLoggingMiddleware records one structured line per request, after the
// handler chain completes.
func (m *middleware) NewLoggingMiddleware(ctx *fiber.Ctx) error {
	start := time.Now()

	requestID, ok := ctx.Locals(RequestIDKey).(string)
	if !ok || requestID == "" {
		requestID = "unknown"
	}

	err := ctx.Next()

	latency := time.Since(start)
	status := ctx.Response().StatusCode()

	logFields := log.Fields{
		"request_id":    requestID,
		"method":        ctx.Method(),
		"path":          ctx.Path(),
		"status":        status,
		"latency_ms":    latency.Milliseconds(),
		"ip":            ctx.IP(),
		"host":          ctx.Hostname(),
		"user_agent":    ctx.Get("User-Agent"),
		"response_size": len(ctx.Response().Body()),
	}

	if len(ctx.Request().Body()) > 0 {
		logFields["request_body"] = sanitizeRequestBody(ctx.Path(), string(ctx.Request().Body()))
	}

	switch {
	case status >= 500:
		log.Error(logFields, "Server error")
	case status >= 400:
		log.Warn(logFields, "Client error")
	default:
		log.Info(logFields, "Success")
	}

	return err
}

func sanitizeRequestBody(path string, body string) string {
	var jsonBody map[string]interface{}
	if err := json.Unmarshal([]byte(body), &jsonBody); err != nil {
		return "[non-JSON body]"
	}

	sensitiveFields := []string{
		"password", "token", "secret", "key", "auth",
		"credential", "authorization", "pin",
	}

	// Assistant commands can carry free text; log it truncated, not raw.
	if strings.Contains(path, "/assistant") {
		if command, ok := jsonBody["command"].(string); ok && len(command) > 200 {
			jsonBody["command"] = command[:200] + "…"
		}
	}

	for _, field := range sensitiveFields {
		if _, exists := jsonBody[field]; exists {
			jsonBody[field] = "[SECRET]"
		}
	}

	sanitized, err := json.Marshal(jsonBody)
	if err != nil {
		return "[sanitization-failed]"
	}

	return string(sanitized)
}
