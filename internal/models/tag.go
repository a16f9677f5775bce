package models

import "time"

type Tag struct {
	ID         uint      `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	CreateTime time.Time `json:"created_at" db:"create_time"`
	ChangeTime time.Time `json:"updated_at" db:"change_time"`
}

// TicketTag is one row of the ticket/tag join relation. The (TicketID, TagID)
// pair is unique; both sides must reference existing rows.
type TicketTag struct {
	TicketID uint `json:"ticket_id" db:"ticket_id"`
	TagID    uint `json:"tag_id" db:"tag_id"`
}

type CreateTagRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateTagRequest struct {
	Name string `json:"name" binding:"required"`
}
