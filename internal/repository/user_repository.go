package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"exam-hub/internal/domain"
	"exam-hub/internal/repository/models"
	"exam-hub/internal/util"

	"github.com/jmoiron/sqlx"
)

const userColumns = `ID, NAME, EMAIL, PASSWORD_HASH, ROLE, CREATED_AT, UPDATED_AT`

// sqlxUserRepository implements domain.UserRepository using sqlx.
type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of sqlxUserRepository.
func NewUserRepository(db *sqlx.DB) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

// Create inserts a new user. A duplicate email maps to CONFLICT.
func (r *sqlxUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = util.NewULID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	query := `INSERT INTO users (` + userColumns + `)
	          VALUES (:ID, :NAME, :EMAIL, :PASSWORD_HASH, :ROLE, :CREATED_AT, :UPDATED_AT)`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, toModelUser(user)); err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("user with this email already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their internal ID.
func (r *sqlxUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "ID = ?", id)
}

// GetByEmail retrieves a user by normalised email.
func (r *sqlxUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "EMAIL = ?", domain.NormalizeEmail(email))
}

func (r *sqlxUserRepository) getOne(ctx context.Context, cond string, arg interface{}) (*domain.User, error) {
	db := GetExecutor(ctx, r.db)
	var row models.User
	if err := db.GetContext(ctx, &row, db.Rebind(`SELECT `+userColumns+` FROM users WHERE `+cond), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Return nil, nil for not found
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toDomainUser(&row), nil
}

// Update updates name, email, password hash and role.
func (r *sqlxUserRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()
	query := `UPDATE users SET NAME = :NAME, EMAIL = :EMAIL, PASSWORD_HASH = :PASSWORD_HASH, ROLE = :ROLE,
	          UPDATED_AT = :UPDATED_AT WHERE ID = :ID`
	result, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, toModelUser(user))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("user with this email already exists")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectAffected(result, "user", user.ID)
}

func toDomainUser(m *models.User) *domain.User {
	return &domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toModelUser(u *domain.User) *models.User {
	return &models.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
