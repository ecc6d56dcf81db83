package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"exam-hub/internal/config"
	"exam-hub/internal/domain"
	"exam-hub/internal/dto"
	"exam-hub/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidJWTToken = errors.New("invalid jwt token")
)

const minSecretLength = 32

// AuthService defines the interface for authentication operations.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	CreateJWT(ctx context.Context, user *domain.User) (string, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	// Authenticate validates tokenString and loads the user it names.
	Authenticate(ctx context.Context, tokenString string) (*domain.User, error)
}

type authServiceImpl struct {
	users domain.UserRepository
	cfg   config.JWTConfig
	// hashCost is lowered in tests.
	hashCost int
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(users domain.UserRepository, cfg config.JWTConfig) (AuthService, error) {
	if len(cfg.SecretKey) < minSecretLength {
		return nil, fmt.Errorf("jwt secret key must be at least %d bytes long", minSecretLength)
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, errors.New("jwt access token ttl must be positive")
	}
	return &authServiceImpl{users: users, cfg: cfg, hashCost: bcrypt.DefaultCost}, nil
}

func hashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", domain.NewInternalError("failed to hash password", err)
	}
	return string(hashed), nil
}

func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	user := domain.NewUser(req.Name, req.Email)

	existing, err := s.users.GetByEmail(ctx, user.Email)
	if err != nil {
		return nil, domain.NewInternalError("failed to check email", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError("user with this email already exists").WithContext("email", user.Email)
	}

	if user.PasswordHash, err = hashPassword(req.Password, s.hashCost); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, wrapStoreError("failed to create user", err)
	}

	logger.Get().Info("User registered", zap.String("userID", user.ID))
	return s.authResponse(ctx, user)
}

func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil {
		return nil, domain.NewInternalError("failed to get user", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, domain.NewUnauthorizedError("invalid email or password")
	}
	return s.authResponse(ctx, user)
}

func (s *authServiceImpl) authResponse(ctx context.Context, user *domain.User) (*dto.AuthResponse, error) {
	token, err := s.CreateJWT(ctx, user)
	if err != nil {
		return nil, domain.NewInternalError("failed to create token", err)
	}
	return &dto.AuthResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	}, nil
}

func (s *authServiceImpl) CreateJWT(ctx context.Context, user *domain.User) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.SecretKey))
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Debug("JWT token expired", zap.Error(err))
		} else {
			logger.Get().Warn("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	if claims, ok := token.Claims.(*dto.AuthClaims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}
	return nil, ErrInvalidJWTToken
}

func (s *authServiceImpl) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.ValidateJWT(ctx, tokenString)
	if err != nil {
		return nil, domain.NewUnauthorizedError("not authorized, token failed")
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load token user", err)
	}
	if user == nil {
		return nil, domain.NewUnauthorizedError("not authorized, user no longer exists")
	}
	user.PasswordHash = ""
	return user, nil
}
