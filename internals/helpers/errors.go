package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Sentinel errors shared by the service layer. Controllers map these onto
// HTTP statuses in one place instead of switching on strings.
var (
	ErrNotFound          = errors.New("record not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("operation not allowed in current status")
	ErrStoreUnavailable  = errors.New("datastore unavailable")
	ErrUpstream          = errors.New("upstream delivery failed")
)

// FromServiceError translates a service error into the response envelope.
func FromServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation):
		return Error(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return Error(c, fiber.StatusPreconditionFailed, err.Error())
	case errors.Is(err, ErrStoreUnavailable):
		return Error(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrUpstream):
		return Error(c, fiber.StatusBadGateway, err.Error())
	default:
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return Error(c, fe.Code, fe.Message)
		}
		return Error(c, fiber.StatusInternalServerError, err.Error())
	}
}
