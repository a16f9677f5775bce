package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tagblaze/tagblaze/internal/auth"
	"github.com/tagblaze/tagblaze/internal/repository"
)

// respondError maps a typed error to a stable status code and body. Storage
// failures surface as a generic 500 so driver detail never leaks to clients.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, auth.ErrExpiredToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
	case errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, repository.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, repository.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": "Name already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
