package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tagblaze/tagblaze/internal/models"
	"github.com/tagblaze/tagblaze/internal/repository"
)

type TagHandler struct {
	tags *repository.TagRepository
}

func NewTagHandler(tags *repository.TagRepository) *TagHandler {
	return &TagHandler{tags: tags}
}

// CreateTag handles POST /tags.
func (h *TagHandler) CreateTag(c *gin.Context) {
	var req models.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	tag := &models.Tag{Name: req.Name}
	if err := h.tags.Create(tag); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tag)
}

// ListTags handles GET /tags. Tag reads are public.
func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tags.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// GetTag handles GET /tags/:id.
func (h *TagHandler) GetTag(c *gin.Context) {
	id, ok := tagID(c)
	if !ok {
		return
	}

	tag, err := h.tags.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// UpdateTag handles PUT /tags/:id.
func (h *TagHandler) UpdateTag(c *gin.Context) {
	id, ok := tagID(c)
	if !ok {
		return
	}

	var req models.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	tag, err := h.tags.Update(id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// DeleteTag handles DELETE /tags/:id. The tag disappears from every ticket's
// tag list in the same transaction.
func (h *TagHandler) DeleteTag(c *gin.Context) {
	id, ok := tagID(c)
	if !ok {
		return
	}

	if err := h.tags.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func tagID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag id"})
		return 0, false
	}
	return uint(id), true
}
