package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"exam-hub/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"ID", "NAME", "EMAIL", "PASSWORD_HASH", "ROLE", "CREATED_AT", "UPDATED_AT"}

func TestUserRepository_Create(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := domain.NewUser("Asha", "Asha@Example.com")
	err := repo.Create(context.Background(), user)

	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("ORA-00001: unique constraint (EXAM.UQ_USERS_EMAIL) violated"))

	err := repo.Create(context.Background(), domain.NewUser("Asha", "asha@example.com"))

	assert.True(t, domain.HasCode(err, domain.CodeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE EMAIL = ?")).
		WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow("u1", "Asha", "asha@example.com", "hash", "admin", now, now))

	user, err := repo.GetByEmail(context.Background(), "  ASHA@example.com ")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.IsAdmin())
	assert.Equal(t, "hash", user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE ID = ?")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	user, err := repo.GetByID(context.Background(), "ghost")

	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET NAME = ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := domain.NewUser("Asha K", "asha@example.com")
	user.ID = "u1"
	err := repo.Update(context.Background(), user)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
