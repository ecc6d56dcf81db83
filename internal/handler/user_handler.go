package handler

import (
	"exam-hub/internal/domain"
	"exam-hub/internal/dto"
	"exam-hub/internal/middleware"
	"exam-hub/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
	bind        *middleware.RequestBinder
}

func NewUserHandler(userService service.UserService, bind *middleware.RequestBinder) *UserHandler {
	return &UserHandler{userService: userService, bind: bind}
}

func callerID(c *fiber.Ctx) (string, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return "", domain.NewUnauthorizedError("not authorized, no token")
	}
	return user.ID, nil
}

// GetProfile retrieves the profile of the currently authenticated user.
// @Summary Get My Profile
// @Description Retrieves the profile information of the logged-in user.
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserProfileResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /auth/profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	profile, err := h.userService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// UpdateProfile changes name, email or password of the logged-in user.
// @Summary Update My Profile
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param profile body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} dto.UserProfileResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /auth/profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := h.bind.Body(c, &req); err != nil {
		return err
	}
	profile, err := h.userService.UpdateProfile(c.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}
