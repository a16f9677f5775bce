package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tagblaze/tagblaze/internal/seed"
)

// AdminHandler exposes development-only conveniences.
type AdminHandler struct {
	seeder *seed.Service
}

func NewAdminHandler(seeder *seed.Service) *AdminHandler {
	return &AdminHandler{seeder: seeder}
}

// ResetDB handles POST /admin/dev/reset-db: wipe everything, reseed the demo
// fixtures, and report what was created.
func (h *AdminHandler) ResetDB(c *gin.Context) {
	summary, err := h.seeder.Reset()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"reset": false,
			"error": "Reset failed",
		})
		return
	}
	c.JSON(http.StatusOK, summary)
}
