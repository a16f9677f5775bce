package models

import "time"

type Ticket struct {
	ID          uint      `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Status      string    `json:"status" db:"status"`
	UserID      *uint     `json:"user_id" db:"user_id"`
	CreateTime  time.Time `json:"created_at" db:"create_time"`
	ChangeTime  time.Time `json:"updated_at" db:"change_time"`
}

type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusClosed     TicketStatus = "closed"
)

// IsValid reports whether the status is one of the three defined values.
// Transitions between statuses are unrestricted.
func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

type CreateTicketRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// UpdateTicketRequest carries a partial ticket update. Nil fields are left
// unchanged.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}
