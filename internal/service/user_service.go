package service

import (
	"context"
	"strings"

	"exam-hub/internal/domain"
	"exam-hub/internal/dto"
	"exam-hub/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService defines the interface for user-related operations.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserProfileResponse, error)
}

type userServiceImpl struct {
	users    domain.UserRepository
	hashCost int
}

// NewUserService creates a new instance of UserService.
func NewUserService(users domain.UserRepository) UserService {
	return &userServiceImpl{users: users, hashCost: bcrypt.DefaultCost}
}

func (s *userServiceImpl) mustGet(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get user", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user not found").WithContext("id", userID)
	}
	return user, nil
}

func newProfile(user *domain.User) *dto.UserProfileResponse {
	return &dto.UserProfileResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// GetProfile retrieves a user's profile information.
func (s *userServiceImpl) GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	user, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newProfile(user), nil
}

// UpdateProfile overwrites name, email and password when present. The role is never changed here.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserProfileResponse, error) {
	user, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := domain.NormalizeEmail(*req.Email)
		if email != user.Email {
			existing, err := s.users.GetByEmail(ctx, email)
			if err != nil {
				return nil, domain.NewInternalError("failed to check email", err)
			}
			if existing != nil {
				return nil, domain.NewConflictError("user with this email already exists").WithContext("email", email)
			}
			user.Email = email
		}
	}
	if req.Password != nil {
		if user.PasswordHash, err = hashPassword(*req.Password, s.hashCost); err != nil {
			return nil, err
		}
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, wrapStoreError("failed to update user", err)
	}

	logger.Get().Info("User profile updated", zap.String("userID", userID))
	return newProfile(user), nil
}
