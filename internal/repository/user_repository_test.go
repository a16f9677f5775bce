package repository

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagblaze/tagblaze/internal/database"
	"github.com/tagblaze/tagblaze/internal/models"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	database.SetDriver("postgres")
	return db, mock
}

func TestUserRepositoryCreate(t *testing.T) {
	t.Run("assigns the generated id", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs("zoya@tagblaze.dev", "Zoya", "hash", "agent", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		user := &models.User{
			Email:    "zoya@tagblaze.dev",
			Name:     "Zoya",
			Password: "hash",
			Role:     "agent",
		}
		require.NoError(t, repo.Create(user))
		assert.Equal(t, uint(7), user.ID)
		assert.False(t, user.CreateTime.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to ErrDuplicateEmail", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "users_email_lower_idx"`))

		err := repo.Create(&models.User{Email: "zoya@tagblaze.dev", Name: "Zoya", Password: "hash", Role: "agent"})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepositoryGetByID(t *testing.T) {
	t.Run("returns the stored user", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		created := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "pw", "role", "create_time"}).
				AddRow(3, "divya@tagblaze.dev", "Divya", "hash", "agent", created))

		user, err := repo.GetByID(3)
		require.NoError(t, err)
		assert.Equal(t, uint(3), user.ID)
		assert.Equal(t, "divya@tagblaze.dev", user.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user yields ErrNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
			WithArgs(99).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(99)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepositoryGetByEmail(t *testing.T) {
	t.Run("matches case-insensitively in the store", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(email) = LOWER($1)")).
			WithArgs("ZOYA@TagBlaze.DEV").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "pw", "role", "create_time"}).
				AddRow(1, "zoya@tagblaze.dev", "Zoya", "hash", "agent", time.Now()))

		user, err := repo.GetByEmail("ZOYA@TagBlaze.DEV")
		require.NoError(t, err)
		assert.Equal(t, "zoya@tagblaze.dev", user.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown email yields ErrNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(email) = LOWER($1)")).
			WithArgs("nobody@tagblaze.dev").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByEmail("nobody@tagblaze.dev")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
