package handler

import (
	"exam-hub/internal/dto"
	"exam-hub/internal/middleware"
	"exam-hub/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
	bind        *middleware.RequestBinder
}

func NewAuthHandler(authService service.AuthService, bind *middleware.RequestBinder) *AuthHandler {
	return &AuthHandler{authService: authService, bind: bind}
}

// Register creates an account with the user role.
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param user body dto.RegisterRequest true "Account"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := h.bind.Body(c, &req); err != nil {
		return err
	}
	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login exchanges credentials for a bearer token.
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := h.bind.Body(c, &req); err != nil {
		return err
	}
	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
