package serverutils

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates AppErrors bubbling out of handlers
// into the HTTP taxonomy. Anything unclassified is a 500 with a generic
// message; internals stay in the logs.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if appErr, ok := AsAppError(err); ok {
			return ctx.Status(appErr.StatusCode()).JSON(ErrorResponse(appErr.StatusCode(), appErr.Message))
		}

		if fiberErr, ok := err.(*fiber.Error); ok {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(
			ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
	}
}
