package repository

import (
	"database/sql"
	"fmt"

	"github.com/tagblaze/tagblaze/internal/database"
	"github.com/tagblaze/tagblaze/internal/models"
)

// TicketTagRepository owns the ticket/tag join relation.
type TicketTagRepository struct {
	db *sql.DB
}

// NewTicketTagRepository creates a new relation repository.
func NewTicketTagRepository(db *sql.DB) *TicketTagRepository {
	return &TicketTagRepository{db: db}
}

// ListTagsForTicket returns the tags currently associated with a ticket,
// ordered by ascending tag id. A ticket with no tags yields an empty slice;
// a missing ticket yields ErrNotFound.
func (r *TicketTagRepository) ListTagsForTicket(ticketID uint) ([]*models.Tag, error) {
	exists, err := r.ticketExists(r.db, ticketID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	query := `
		SELECT t.id, t.name, t.create_time, t.change_time
		FROM tags t
		JOIN ticket_tags tt ON tt.tag_id = t.id
		WHERE tt.ticket_id = $1
		ORDER BY t.id`

	rows, err := r.db.Query(database.ConvertPlaceholders(query), ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags for ticket: %w", err)
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
		return nil, fmt.Errorf("failed to list tags for ticket: %w", err)
	}
	return tags, nil
}

// Assign associates a tag with a ticket. Assigning an existing pair is a
// no-op success, so client retries are safe and the pair stays unique.
func (r *TicketTagRepository) Assign(ticketID, tagID uint) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := r.ticketExists(tx, ticketID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	exists, err = r.tagExists(tx, tagID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	// A duplicate insert must not abort the transaction, so the statement
	// itself swallows the conflict instead of relying on error mapping.
	insert := `INSERT INTO ticket_tags (ticket_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if database.IsMySQL() {
		insert = `INSERT IGNORE INTO ticket_tags (ticket_id, tag_id) VALUES (?, ?)`
	}

	if _, err := tx.Exec(insert, ticketID, tagID); err != nil {
		// Parent deleted between the existence check and the insert.
		if database.IsForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to assign tag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tag assignment: %w", err)
	}
	return nil
}

// Remove deletes the relation row if present. Removing an absent relation is
// a no-op success: the post-condition already holds.
func (r *TicketTagRepository) Remove(ticketID, tagID uint) error {
	query := `DELETE FROM ticket_tags WHERE ticket_id = $1 AND tag_id = $2`
	if _, err := r.db.Exec(database.ConvertPlaceholders(query), ticketID, tagID); err != nil {
		return fmt.Errorf("failed to remove tag assignment: %w", err)
	}
	return nil
}

type queryRower interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

func (r *TicketTagRepository) ticketExists(q queryRower, ticketID uint) (bool, error) {
	var exists bool
	query := database.ConvertPlaceholders(`SELECT EXISTS(SELECT 1 FROM tickets WHERE id = $1)`)
	if err := q.QueryRow(query, ticketID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check ticket: %w", err)
	}
	return exists, nil
}

func (r *TicketTagRepository) tagExists(q queryRower, tagID uint) (bool, error) {
	var exists bool
	query := database.ConvertPlaceholders(`SELECT EXISTS(SELECT 1 FROM tags WHERE id = $1)`)
	if err := q.QueryRow(query, tagID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check tag: %w", err)
	}
	return exists, nil
}
