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

	"github.com/tagblaze/tagblaze/internal/models"
)

func TestTagRepositoryCreate(t *testing.T) {
	t.Run("assigns the generated id", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTagRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tags")).
			WithArgs("Bug", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		tag := &models.Tag{Name: "Bug"}
		require.NoError(t, repo.Create(tag))
		assert.Equal(t, uint(1), tag.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to ErrDuplicateName", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTagRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tags")).
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "tags_name_lower_idx"`))

		err := repo.Create(&models.Tag{Name: "bug"})
		assert.ErrorIs(t, err, ErrDuplicateName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTagRepositoryList(t *testing.T) {
	t.Run("returns all tags ordered by id", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTagRepository(db)

		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("FROM tags ORDER BY id")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "create_time", "change_time"}).
				AddRow(1, "Bug", now, now).
				AddRow(2, "Feature", now, now))

		tags, err := repo.List()
		require.NoError(t, err)
		require.Len(t, tags, 2)
		assert.Equal(t, "Bug", tags[0].Name)
		assert.Equal(t, "Feature", tags[1].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty table returns an empty slice, not nil", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTagRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM tags ORDER BY id")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "create_time", "change_time"}))

		tags, err := repo.List()
		require.NoError(t, err)
		assert.NotNil(t, tags)
		assert.Empty(t, tags)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTagRepositoryUpdate(t *testing.T) {
	t.Run("renames and returns the fresh row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTagRepository(db)

		now := time.Now()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE tags SET name = $1")).
			WithArgs("Defect", sqlmock.AnyArg(), 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta("FROM tags WHERE id = $1")).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "create_time", "change_time"}).
				AddRow(1, "Defect", now, now))

		tag, err := repo.Update(1, "Defect")
		require.NoError(t, err)
		assert.Equal(t, "Defect", tag.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing tag yields ErrNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTagRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE tags SET name = $1")).
			WithArgs("Defect", sqlmock.AnyArg(), 99).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := repo.Update(99, "Defect")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rename onto a taken name yields ErrDuplicateName", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTagRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE tags SET name = $1")).
			WithArgs("Feature", sqlmock.AnyArg(), 1).
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "tags_name_lower_idx"`))

		_, err := repo.Update(1, "Feature")
		assert.ErrorIs(t, err, ErrDuplicateName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTagRepositoryDelete(t *testing.T) {
	t.Run("removes relation rows in the same transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTagRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ticket_tags WHERE tag_id = $1")).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tags WHERE id = $1")).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing tag rolls back with ErrNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTagRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ticket_tags WHERE tag_id = $1")).
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tags WHERE id = $1")).
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Delete(99)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTagRepositoryGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTagRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tags WHERE id = $1")).
		WithArgs(42).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
