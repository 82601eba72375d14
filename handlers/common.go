package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"surveyquiz/services"

	"github.com/gin-gonic/gin"
)

// currentUserID reads the authenticated user id injected by the auth
// middleware.
func currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, false
	}
	return userID.(uint), true
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// respondError maps service sentinels to HTTP statuses. Ownership mismatches
// arrive here as ErrNotFound and go out as 404, indistinguishable from a
// missing record.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrNoCorrectAnswer),
		errors.Is(err, services.ErrAnswerCountOutOfRange),
		errors.Is(err, services.ErrInvalidAnswer),
		errors.Is(err, services.ErrNoQuestions),
		errors.Is(err, services.ErrInterestsRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
