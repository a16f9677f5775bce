package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tagblaze/tagblaze/internal/database"
	"github.com/tagblaze/tagblaze/internal/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. The unique index on LOWER(email) makes the
// duplicate check atomic with the insert: of two concurrent registrations
// with the same email exactly one succeeds, the other gets ErrDuplicateEmail.
func (r *UserRepository) Create(user *models.User) error {
	user.CreateTime = time.Now()

	query := `
		INSERT INTO users (email, name, pw, role, create_time)
		VALUES ($1, $2, $3, $4, $5)`

	var err error
	if database.IsPostgreSQL() {
		err = r.db.QueryRow(query+" RETURNING id",
			user.Email, user.Name, user.Password, user.Role, user.CreateTime,
		).Scan(&user.ID)
	} else {
		var res sql.Result
		res, err = r.db.Exec(database.ConvertPlaceholders(query),
			user.Email, user.Name, user.Password, user.Role, user.CreateTime)
		if err == nil {
			id, idErr := res.LastInsertId()
			if idErr != nil {
				return fmt.Errorf("failed to read inserted user id: %w", idErr)
			}
			user.ID = uint(id)
		}
	}

	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	query := `
		SELECT id, email, name, pw, role, create_time
		FROM users
		WHERE id = $1`

	var user models.User
	err := r.db.QueryRow(database.ConvertPlaceholders(query), id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Password,
		&user.Role,
		&user.CreateTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email, matched case-insensitively.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, email, name, pw, role, create_time
		FROM users
		WHERE LOWER(email) = LOWER($1)`

	var user models.User
	err := r.db.QueryRow(database.ConvertPlaceholders(query), email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Password,
		&user.Role,
		&user.CreateTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}
