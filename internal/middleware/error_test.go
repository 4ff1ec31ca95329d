package middleware_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"synapse/internal/domain"
	"synapse/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", domain.NewNotFoundError("Room not found"), http.StatusNotFound, "NOT_FOUND"},
		{"validation", domain.NewValidationError("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"forbidden", domain.NewForbiddenError("no"), http.StatusForbidden, "FORBIDDEN"},
		{"conflict", domain.NewConflictError(domain.ReasonAttemptBlocked, "once"), http.StatusConflict, "CONFLICT"},
		{"rate limited", domain.NewRateLimitedError(nil), http.StatusTooManyRequests, "RATE_LIMITED"},
		{"quota", domain.NewQuotaExhaustedError(nil), http.StatusPaymentRequired, "QUOTA_EXHAUSTED"},
		{"network", domain.NewNetworkError(errors.New("eof")), http.StatusBadGateway, "NETWORK_ERROR"},
		{"parse", domain.NewParseError("no json", nil), http.StatusBadGateway, "PARSE_ERROR"},
		{"internal", domain.NewInternalError("boom", errors.New("db")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"fiber", fiber.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "HTTP_ERROR"},
		{"unknown", errors.New("plain"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var out middleware.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &out))
			assert.Equal(t, tt.wantCode, out.Code)
			assert.Equal(t, tt.wantStatus, out.Status)
		})
	}
}

func TestErrorHandler_ConflictReasonInDetails(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/", func(c *fiber.Ctx) error {
		return domain.NewConflictError(domain.ReasonTimeExpired, "Time limit has been reached")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	var out middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "TIME_EXPIRED", out.Details["reason"])
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/", func(c *fiber.Ctx) error {
		return domain.ValidationErrors{domain.NewMissingFieldError("name")}
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	var out middleware.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "name", out.Errors[0].Field)
}

func TestValidateIDParams(t *testing.T) {
	vm := middleware.NewValidationMiddleware()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/rooms/:roomID", vm.ValidateIDParams("roomID"), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/activity", vm.ValidateDaysQuery(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"days": c.Locals("validated_days")})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/rooms/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/rooms/"+testUserID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/activity?days=0", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/activity?days=7", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
