package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"exam-hub/internal/domain"
	"exam-hub/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"not found", domain.NewNotFoundError("topic not found"), fiber.StatusNotFound, "NOT_FOUND"},
		{"invalid reference", domain.NewInvalidReferenceError("subject not found"), fiber.StatusBadRequest, "INVALID_REFERENCE"},
		{"cycle", domain.NewCycleError("topic cannot be its own parent"), fiber.StatusBadRequest, "CYCLE"},
		{"has dependents", domain.NewHasDependentsError("cannot delete"), fiber.StatusBadRequest, "HAS_DEPENDENTS"},
		{"unauthorized", domain.NewUnauthorizedError("no token"), fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", domain.NewForbiddenError("not admin"), fiber.StatusForbidden, "FORBIDDEN"},
		{"conflict", domain.NewConflictError("duplicate"), fiber.StatusConflict, "CONFLICT"},
		{"internal", domain.NewInternalError("db down", errors.New("ORA-12541")), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
		{"validation", domain.ValidationErrors{domain.NewMissingFieldError("name")}, fiber.StatusBadRequest, "VALIDATION_ERROR"},
		{"fiber", fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed, "HTTP_ERROR"},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			status, body := doRequest(t, app, fiber.MethodGet, "/", "")
			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, tt.expectedCode, body["code"])
			assert.NotEmpty(t, body["message"])
			assert.EqualValues(t, tt.expectedStatus, body["status"])
		})
	}
}

func TestErrorHandler_HidesInternalDetails(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/", func(c *fiber.Ctx) error {
		return domain.NewInternalError("failed to list topics", errors.New("ORA-00942: table or view does not exist"))
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	_, body := doRequest(t, app, fiber.MethodGet, "/", "")
	assert.Equal(t, "Internal server error", body["message"])
	assert.NotContains(t, body, "details")
}

func TestErrorHandler_ValidationDetails(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/", func(c *fiber.Ctx) error {
		return domain.ValidationErrors{domain.NewMissingFieldError("name"), domain.NewMissingFieldError("code")}
	})

	_, body := doRequest(t, app, fiber.MethodGet, "/", "")
	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	assert.Len(t, errs, 2)
}

func TestRequestBinder(t *testing.T) {
	type payload struct {
		Name  string `json:"name" validate:"required"`
		Limit int    `query:"limit" validate:"omitempty,gte=1"`
	}
	binder := middleware.NewRequestBinder()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Post("/", func(c *fiber.Ctx) error {
		var p payload
		if err := binder.Body(c, &p); err != nil {
			return err
		}
		return c.JSON(p)
	})

	for body, code := range map[string]string{`{}`: "VALIDATION_ERROR", `{"name":`: "INVALID_INPUT"} {
		req := httptest.NewRequest(fiber.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, body)

		var decoded map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
		resp.Body.Close()
		assert.Equal(t, code, decoded["code"], body)
	}
}
