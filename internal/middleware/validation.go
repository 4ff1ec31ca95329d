package middleware

import (
	"synapse/internal/domain"
	"synapse/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateIDParams rejects the request unless every named path parameter is
// a UUID.
func (vm *ValidationMiddleware) ValidateIDParams(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var errs domain.ValidationErrors
		for _, name := range names {
			errs = append(errs, vm.validator.ValidateID(name, c.Params(name))...)
		}
		if len(errs) > 0 {
			return errs
		}
		return c.Next()
	}
}

// ValidateDaysQuery checks the optional ?days= query parameter and stores
// the parsed value under "validated_days". Zero means "not given".
func (vm *ValidationMiddleware) ValidateDaysQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := 0
		if raw := c.Query("days"); raw != "" {
			n := c.QueryInt("days", -1)
			if n < 1 || n > 365 {
				return domain.ValidationErrors{domain.NewOutOfRangeError("days", raw, 1, 365)}
			}
			days = n
		}
		c.Locals("validated_days", days)
		return c.Next()
	}
}
