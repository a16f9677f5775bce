package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tagblaze/tagblaze/internal/database"
	"github.com/tagblaze/tagblaze/internal/models"
)

// TicketRepository handles database operations for tickets.
type TicketRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = "id, title, description, status, user_id, create_time, change_time"

func scanTicket(row interface{ Scan(...interface{}) error }) (*models.Ticket, error) {
	var t models.Ticket
	var userID sql.NullInt64
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&userID,
		&t.CreateTime,
		&t.ChangeTime,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		id := uint(userID.Int64)
		t.UserID = &id
	}
	return &t, nil
}

// Create inserts a new ticket. Status defaults to open.
func (r *TicketRepository) Create(ticket *models.Ticket) error {
	if ticket.Status == "" {
		ticket.Status = string(models.StatusOpen)
	}
	now := time.Now()
	ticket.CreateTime = now
	ticket.ChangeTime = now

	var userID interface{}
	if ticket.UserID != nil {
		userID = *ticket.UserID
	}

	query := `
		INSERT INTO tickets (title, description, status, user_id, create_time, change_time)
		VALUES ($1, $2, $3, $4, $5, $6)`

	var err error
	if database.IsPostgreSQL() {
		err = r.db.QueryRow(query+" RETURNING id",
			ticket.Title, ticket.Description, ticket.Status, userID,
			ticket.CreateTime, ticket.ChangeTime,
		).Scan(&ticket.ID)
	} else {
		var res sql.Result
		res, err = r.db.Exec(database.ConvertPlaceholders(query),
			ticket.Title, ticket.Description, ticket.Status, userID,
			ticket.CreateTime, ticket.ChangeTime)
		if err == nil {
			id, idErr := res.LastInsertId()
			if idErr != nil {
				return fmt.Errorf("failed to read inserted ticket id: %w", idErr)
			}
			ticket.ID = uint(id)
		}
	}

	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

// GetByID retrieves a ticket by ID.
func (r *TicketRepository) GetByID(id uint) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	ticket, err := scanTicket(r.db.QueryRow(database.ConvertPlaceholders(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}
	return ticket, nil
}

// List returns all tickets ordered by ascending id.
func (r *TicketRepository) List() ([]*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY id`
	return r.queryTickets(query)
}

// ListByUser returns the tickets created by one user, ordered by ascending id.
func (r *TicketRepository) ListByUser(userID uint) ([]*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE user_id = $1 ORDER BY id`
	return r.queryTickets(query, userID)
}

func (r *TicketRepository) queryTickets(query string, args ...interface{}) ([]*models.Ticket, error) {
	rows, err := r.db.Query(database.ConvertPlaceholders(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	tickets := []*models.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

// Update applies a partial field change inside one transaction and returns
// the updated ticket. Nil request fields are left untouched.
func (r *TicketRepository) Update(id uint, req *models.UpdateTicketRequest) (*models.Ticket, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	ticket, err := scanTicket(tx.QueryRow(database.ConvertPlaceholders(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}

	if req.Title != nil {
		ticket.Title = *req.Title
	}
	if req.Description != nil {
		ticket.Description = *req.Description
	}
	if req.Status != nil {
		ticket.Status = *req.Status
	}
	ticket.ChangeTime = time.Now()

	update := `
		UPDATE tickets
		SET title = $1, description = $2, status = $3, change_time = $4
		WHERE id = $5`
	if _, err := tx.Exec(database.ConvertPlaceholders(update),
		ticket.Title, ticket.Description, ticket.Status, ticket.ChangeTime, id); err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ticket update: %w", err)
	}
	return ticket, nil
}

// Delete removes a ticket and all relation rows referencing it within the
// same transaction, so no dangling relation is ever visible.
func (r *TicketRepository) Delete(id uint) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(database.ConvertPlaceholders(
		`DELETE FROM ticket_tags WHERE ticket_id = $1`), id); err != nil {
		return fmt.Errorf("failed to delete ticket relations: %w", err)
	}

	res, err := tx.Exec(database.ConvertPlaceholders(
		`DELETE FROM tickets WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ticket delete: %w", err)
	}
	return nil
}
