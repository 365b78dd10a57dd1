package serverutils

import (
	"strconv"
	"time"

	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

const requestModule = "HTTP"

// RequestLogger logs every request and records request metrics. It must be
// the outermost middleware: errors that reach it are rendered through the
// app's ErrorHandler first so the final status is known.
func RequestLogger(log logger.ILogger, m *metrics.Manager) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()
		if err != nil {
			if herr := ctx.App().ErrorHandler(ctx, err); herr != nil {
				_ = ctx.SendStatus(fiber.StatusInternalServerError)
			}
		}

		latency := time.Since(start)
		status := ctx.Response().StatusCode()

		if m != nil {
			m.CounterRequests.WithLabelValues(ctx.Method(), strconv.Itoa(status)).Inc()
			m.HistogramRequestDuration.WithLabelValues(ctx.Method()).Observe(latency.Seconds())
		}

		details := map[string]interface{}{
			"method":     ctx.Method(),
			"path":       ctx.Path(),
			"status":     status,
			"latency_ms": latency.Milliseconds(),
			"ip":         ctx.IP(),
		}
		if err != nil {
			details["error"] = err.Error()
		}
		switch {
		case status >= 500:
			log.Error(requestModule, "Request failed", details)
		case status >= 400:
			log.Warn(requestModule, "Request rejected", details)
		default:
			log.Info(requestModule, "Request handled", details)
		}
		return nil
	}
}
