package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"exam-hub/internal/config"
	"exam-hub/internal/domain"
	"exam-hub/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "testsecretkeydontuseinproduction32bytes!"

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{SecretKey: testSecret, AccessTokenTTL: 15 * time.Minute, Issuer: "exam-hub-test"}
}

func newTestAuthService(t *testing.T, users domain.UserRepository) *authServiceImpl {
	t.Helper()
	svc, err := NewAuthService(users, testJWTConfig())
	require.NoError(t, err)
	impl := svc.(*authServiceImpl)
	impl.hashCost = bcrypt.MinCost
	return impl
}

func TestNewAuthService_RejectsShortSecret(t *testing.T) {
	_, err := NewAuthService(new(MockUserRepository), config.JWTConfig{SecretKey: "short", AccessTokenTTL: time.Minute})
	assert.Error(t, err)
}

func TestAuthService_Register(t *testing.T) {
	users := new(MockUserRepository)
	svc := newTestAuthService(t, users)

	users.On("GetByEmail", mock.Anything, "ada@example.org").Return(nil, nil)
	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = "user-1"
	}).Return(nil)

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{Name: "Ada", Email: " Ada@Example.org ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.ID)
	assert.Equal(t, "ada@example.org", resp.Email)
	assert.Equal(t, domain.RoleUser, resp.Role)
	assert.NotEmpty(t, resp.Token)

	created := users.Calls[1].Arguments.Get(1).(*domain.User)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret1")))
	users.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	users := new(MockUserRepository)
	svc := newTestAuthService(t, users)
	users.On("GetByEmail", mock.Anything, "ada@example.org").Return(&domain.User{ID: "user-1"}, nil)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Name: "Ada", Email: "ada@example.org", Password: "secret1"})
	assert.True(t, domain.HasCode(err, domain.CodeConflict))
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	users := new(MockUserRepository)
	svc := newTestAuthService(t, users)
	hash, err := hashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	stored := &domain.User{ID: "user-1", Name: "Ada", Email: "ada@example.org", PasswordHash: hash, Role: domain.RoleAdmin}
	users.On("GetByEmail", mock.Anything, "ada@example.org").Return(stored, nil)
	users.On("GetByEmail", mock.Anything, "nobody@example.org").Return(nil, nil)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "ADA@example.org", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, resp.Role)

	claims, err := svc.ValidateJWT(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "exam-hub-test", claims.Issuer)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "ada@example.org", Password: "wrong"})
	assert.True(t, domain.HasCode(err, domain.CodeUnauthorized))
	_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "nobody@example.org", Password: "secret1"})
	assert.True(t, domain.HasCode(err, domain.CodeUnauthorized))
}

func TestAuthService_Login_RepoError(t *testing.T) {
	users := new(MockUserRepository)
	svc := newTestAuthService(t, users)
	repoErr := errors.New("some database connection error")
	users.On("GetByEmail", mock.Anything, "ada@example.org").Return(nil, repoErr)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "ada@example.org", Password: "x"})
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeInternal, domainErr.Code)
	assert.ErrorIs(t, err, repoErr)
}

func TestAuthService_ValidateJWT_Rejects(t *testing.T) {
	svc := newTestAuthService(t, new(MockUserRepository))
	ctx := context.Background()

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, dto.AuthClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	token, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.ValidateJWT(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, dto.AuthClaims{UserID: "user-1"})
	token, err = forged.SignedString([]byte("another-secret-that-is-long-enough-32"))
	require.NoError(t, err)
	_, err = svc.ValidateJWT(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)

	_, err = svc.ValidateJWT(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

func TestAuthService_Authenticate(t *testing.T) {
	users := new(MockUserRepository)
	svc := newTestAuthService(t, users)
	ctx := context.Background()
	user := &domain.User{ID: "user-1", Name: "Ada", PasswordHash: "hash", Role: domain.RoleUser}
	users.On("GetByID", mock.Anything, "user-1").Return(user, nil)
	users.On("GetByID", mock.Anything, "gone").Return(nil, nil)

	token, err := svc.CreateJWT(ctx, user)
	require.NoError(t, err)
	got, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)
	assert.Empty(t, got.PasswordHash)

	token, err = svc.CreateJWT(ctx, &domain.User{ID: "gone"})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, token)
	assert.True(t, domain.HasCode(err, domain.CodeUnauthorized))

	_, err = svc.Authenticate(ctx, "garbage")
	assert.True(t, domain.HasCode(err, domain.CodeUnauthorized))
}
