package serverutils

import (
	"errors"

	"chatlink-be/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

var kindStatus = map[apperror.Kind]int{
	apperror.KindInvalidInput:              fiber.StatusBadRequest,
	apperror.KindSelfRequest:               fiber.StatusBadRequest,
	apperror.KindConversationAlreadyExists: fiber.StatusConflict,
	apperror.KindCooldownActive:            fiber.StatusConflict,
	apperror.KindRequestAlreadyExists:      fiber.StatusConflict,
	apperror.KindNotFound:                  fiber.StatusNotFound,
	apperror.KindForbidden:                 fiber.StatusForbidden,
	apperror.KindAlreadyResponded:          fiber.StatusConflict,
	apperror.KindUnauthenticated:           fiber.StatusUnauthorized,
	apperror.KindStorageConflict:           fiber.StatusConflict,
}

// ErrorHandlerMiddleware converts service errors into the structured
// error envelope. Storage-engine text never reaches the client.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			status, ok := kindStatus[appErr.Kind]
			if !ok {
				status = fiber.StatusInternalServerError
			}
			return ctx.Status(status).JSON(ErrorResponse(string(appErr.Kind), appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse("HTTP_ERROR", fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse("INTERNAL", "Something went wrong"))
	}
}
