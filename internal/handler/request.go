package handler

import (
	"synapse/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// parseBody decodes the JSON body into out and runs validate on it. A nil
// validate only decodes.
func parseBody[T any](c *fiber.Ctx, out *T, validate func(T) domain.ValidationErrors) error {
	if err := c.BodyParser(out); err != nil {
		return domain.NewValidationError("Invalid request body")
	}
	if validate == nil {
		return nil
	}
	if errs := validate(*out); len(errs) > 0 {
		return errs
	}
	return nil
}
