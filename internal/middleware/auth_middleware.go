package middleware

import (
	"context"
	"strings"

	"exam-hub/internal/domain"
	"exam-hub/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	UserKey             = "user" // Key for storing the caller in fiber.Ctx locals
)

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (*domain.User, error)
}

// OwnerLookup returns the owning user id of the resource a request addresses.
// found is false when the resource does not exist.
type OwnerLookup func(c *fiber.Ctx) (ownerID string, found bool, err error)

// Protected requires a valid bearer token and stores the caller under UserKey.
func Protected(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" || !strings.HasPrefix(authHeader, BearerSchema) {
			return domain.NewUnauthorizedError("not authorized, no token")
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return domain.NewUnauthorizedError("not authorized, no token")
		}

		user, err := auth.Authenticate(c.UserContext(), tokenString)
		if err != nil {
			return err
		}

		c.Locals(UserKey, user)
		return c.Next()
	}
}

// RequireAdmin passes only callers with the admin role. It must run after Protected.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return domain.NewUnauthorizedError("not authorized, no token")
		}
		if !user.IsAdmin() {
			logger.Get().Debug("RequireAdmin: rejected", zap.String("userID", user.ID), zap.String("path", c.Path()))
			return domain.NewForbiddenError("not authorized as an admin")
		}
		return c.Next()
	}
}

// RequireOwner passes admins and the user that owns the addressed resource.
// It must run after Protected.
func RequireOwner(lookup OwnerLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return domain.NewUnauthorizedError("not authorized, no token")
		}
		ownerID, found, err := lookup(c)
		if err != nil {
			return err
		}
		if !found {
			return domain.NewNotFoundError("resource not found")
		}
		if !user.IsAdmin() && ownerID != user.ID {
			return domain.NewForbiddenError("not authorized to modify this resource")
		}
		return c.Next()
	}
}

// CurrentUser returns the caller stored by Protected, or nil.
func CurrentUser(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(UserKey).(*domain.User)
	return user
}
