package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tagblaze/tagblaze/internal/middleware"
	"github.com/tagblaze/tagblaze/internal/models"
	"github.com/tagblaze/tagblaze/internal/repository"
)

type TicketHandler struct {
	tickets *repository.TicketRepository
}

func NewTicketHandler(tickets *repository.TicketRepository) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// CreateTicket handles POST /tickets. The ticket is owned by the caller.
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Status != "" && !models.TicketStatus(req.Status).IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be open, in_progress or closed"})
		return
	}

	ticket := &models.Ticket{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		UserID:      &user.ID,
	}
	if err := h.tickets.Create(ticket); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

// ListTickets handles GET /tickets. Admins see every ticket, agents only
// their own.
func (h *TicketHandler) ListTickets(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var (
		tickets []*models.Ticket
		err     error
	)
	if user.IsAdmin() {
		tickets, err = h.tickets.List()
	} else {
		tickets, err = h.tickets.ListByUser(user.ID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// GetTicket handles GET /tickets/:id.
func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticket, user, ok := h.loadOwnedTicket(c)
	if !ok {
		return
	}
	_ = user
	c.JSON(http.StatusOK, ticket)
}

// UpdateTicket handles PUT /tickets/:id with a partial field change.
func (h *TicketHandler) UpdateTicket(c *gin.Context) {
	ticket, _, ok := h.loadOwnedTicket(c)
	if !ok {
		return
	}

	var req models.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Status != nil && !models.TicketStatus(*req.Status).IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be open, in_progress or closed"})
		return
	}
	if req.Title != nil && *req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title must not be empty"})
		return
	}

	updated, err := h.tickets.Update(ticket.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteTicket handles DELETE /tickets/:id. Relation rows referencing the
// ticket go away in the same transaction.
func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	ticket, _, ok := h.loadOwnedTicket(c)
	if !ok {
		return
	}

	if err := h.tickets.Delete(ticket.ID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// loadOwnedTicket resolves the :id parameter and enforces ownership: admins
// may touch any ticket, agents only their own. It writes the error response
// itself and reports success through the bool.
func (h *TicketHandler) loadOwnedTicket(c *gin.Context) (*models.Ticket, *models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, nil, false
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket id"})
		return nil, nil, false
	}

	ticket, err := h.tickets.GetByID(uint(id))
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}

	if !user.IsAdmin() && (ticket.UserID == nil || *ticket.UserID != user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return nil, nil, false
	}

	return ticket, user, true
}
