package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorStatus maps a sentinel error (matched with errors.Is) to an HTTP status.
type ErrorStatus struct {
	Err    error
	Status int
}

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON envelope.
func ErrorHandlerMiddleware(statuses ...ErrorStatus) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var verr *ValidationError
		if errors.As(err, &verr) {
			res := ErrorResponse(fiber.StatusBadRequest, "Validation failed")
			res.Errors = verr.Fields
			return ctx.Status(fiber.StatusBadRequest).JSON(res)
		}

		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			return ctx.Status(ferr.Code).JSON(ErrorResponse(ferr.Code, ferr.Message))
		}

		for _, s := range statuses {
			if errors.Is(err, s.Err) {
				return ctx.Status(s.Status).JSON(ErrorResponse(s.Status, err.Error()))
			}
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
