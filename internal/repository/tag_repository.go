package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tagblaze/tagblaze/internal/database"
	"github.com/tagblaze/tagblaze/internal/models"
)

// TagRepository handles database operations for tags.
type TagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Create inserts a new tag. Name uniqueness is case-insensitive and enforced
// by the store, so a concurrent duplicate create loses with ErrDuplicateName.
func (r *TagRepository) Create(tag *models.Tag) error {
	now := time.Now()
	tag.CreateTime = now
	tag.ChangeTime = now

	query := `
		INSERT INTO tags (name, create_time, change_time)
		VALUES ($1, $2, $3)`

	var err error
	if database.IsPostgreSQL() {
		err = r.db.QueryRow(query+" RETURNING id",
			tag.Name, tag.CreateTime, tag.ChangeTime,
		).Scan(&tag.ID)
	} else {
		var res sql.Result
		res, err = r.db.Exec(database.ConvertPlaceholders(query),
			tag.Name, tag.CreateTime, tag.ChangeTime)
		if err == nil {
			id, idErr := res.LastInsertId()
			if idErr != nil {
				return fmt.Errorf("failed to read inserted tag id: %w", idErr)
			}
			tag.ID = uint(id)
		}
	}

	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

// GetByID retrieves a tag by ID.
func (r *TagRepository) GetByID(id uint) (*models.Tag, error) {
	query := `SELECT id, name, create_time, change_time FROM tags WHERE id = $1`

	var tag models.Tag
	err := r.db.QueryRow(database.ConvertPlaceholders(query), id).Scan(
		&tag.ID, &tag.Name, &tag.CreateTime, &tag.ChangeTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tag: %w", err)
	}
	return &tag, nil
}

// List returns all tags ordered by ascending id.
func (r *TagRepository) List() ([]*models.Tag, error) {
	rows, err := r.db.Query(`SELECT id, name, create_time, change_time FROM tags ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := []*models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreateTime, &tag.ChangeTime); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// Update renames a tag.
func (r *TagRepository) Update(id uint, name string) (*models.Tag, error) {
	query := `UPDATE tags SET name = $1, change_time = $2 WHERE id = $3`

	changeTime := time.Now()
	res, err := r.db.Exec(database.ConvertPlaceholders(query), name, changeTime, id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(id)
}

// Delete removes a tag and all relation rows referencing it within the same
// transaction.
func (r *TagRepository) Delete(id uint) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(database.ConvertPlaceholders(
		`DELETE FROM ticket_tags WHERE tag_id = $1`), id); err != nil {
		return fmt.Errorf("failed to delete tag relations: %w", err)
	}

	res, err := tx.Exec(database.ConvertPlaceholders(
		`DELETE FROM tags WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tag delete: %w", err)
	}
	return nil
}
