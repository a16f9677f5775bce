package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tagblaze/tagblaze/internal/repository"
)

type RelationHandler struct {
	links *repository.TicketTagRepository
}

func NewRelationHandler(links *repository.TicketTagRepository) *RelationHandler {
	return &RelationHandler{links: links}
}

// ListTagsForTicket handles GET /relations/:ticket_id/tags. Public read.
func (h *RelationHandler) ListTagsForTicket(c *gin.Context) {
	ticketID, ok := pathID(c, "ticket_id")
	if !ok {
		return
	}

	tags, err := h.links.ListTagsForTicket(ticketID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// AttachTag handles POST /relations/:ticket_id/tags/:tag_id. Attaching an
// already-attached tag succeeds without creating a second row.
func (h *RelationHandler) AttachTag(c *gin.Context) {
	ticketID, ok := pathID(c, "ticket_id")
	if !ok {
		return
	}
	tagID, ok := pathID(c, "tag_id")
	if !ok {
		return
	}

	if err := h.links.Assign(ticketID, tagID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// DetachTag handles DELETE /relations/:ticket_id/tags/:tag_id. Detaching an
// absent relation is a no-op success.
func (h *RelationHandler) DetachTag(c *gin.Context) {
	ticketID, ok := pathID(c, "ticket_id")
	if !ok {
		return
	}
	tagID, ok := pathID(c, "tag_id")
	if !ok {
		return
	}

	if err := h.links.Remove(ticketID, tagID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
