package serverutils

import (
	"errors"

	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const errorHandlerModule = "ErrorHandler"

// NotFoundBody is deliberately minimal so a foreign note and a missing one
// are indistinguishable.
var NotFoundBody = fiber.Map{"error": "not found"}

// HandleError writes the response for an error returned by a handler.
func HandleError(ctx *fiber.Ctx, err error, log logger.ILogger) error {
	var verr *service.ValidationError
	var ferr *fiber.Error

	switch {
	case errors.Is(err, service.ErrNoteNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(NotFoundBody)
	case errors.As(err, &verr):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(verr.Fields)
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, err.Error()))
	case errors.As(err, &ferr):
		if ferr.Code == fiber.StatusNotFound {
			return ctx.Status(fiber.StatusNotFound).JSON(NotFoundBody)
		}
		return ctx.Status(ferr.Code).JSON(ErrorResponse(ferr.Code, ferr.Message))
	}

	if log != nil {
		log.Error(errorHandlerModule, "Unhandled request error", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err,
		})
	}
	return ctx.Status(fiber.StatusInternalServerError).
		JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
}

// ErrorHandlerMiddleware converts handler errors into JSON responses.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return HandleError(ctx, err, log)
	}
}

// FiberErrorHandler is installed as fiber.Config.ErrorHandler for errors that
// escape the middleware chain.
func FiberErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		return HandleError(ctx, err, log)
	}
}
