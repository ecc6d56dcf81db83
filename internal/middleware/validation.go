package middleware

import (
	"exam-hub/internal/domain"
	"exam-hub/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// RequestBinder decodes request bodies and query strings and runs struct validation on them.
type RequestBinder struct {
	validator *validation.Validator
}

// NewRequestBinder creates a new RequestBinder instance
func NewRequestBinder() *RequestBinder {
	return &RequestBinder{validator: validation.NewValidator()}
}

// Body decodes the JSON body into out and validates it.
func (b *RequestBinder) Body(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return domain.NewInvalidInputError("invalid request body").WithContext("cause", err.Error())
	}
	return b.validator.Struct(out)
}

// Query decodes the query string into out and validates it.
func (b *RequestBinder) Query(c *fiber.Ctx, out interface{}) error {
	if err := c.QueryParser(out); err != nil {
		return domain.ValidationErrors{domain.NewInvalidFormatError("query", string(c.Request().URI().QueryString()))}
	}
	return b.validator.Struct(out)
}
