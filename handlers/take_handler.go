package handlers

import (
	"errors"
	"net/http"

	"surveyquiz/services"

	"github.com/gin-gonic/gin"
)

type TakeHandler struct {
	takeService *services.TakeService
}

func NewTakeHandler(takeService *services.TakeService) *TakeHandler {
	return &TakeHandler{
		takeService: takeService,
	}
}

// GetTakeState shows where the respondent stands on a quiz: the already-taken
// screen, or the next unanswered question with the progress percentage.
func (h *TakeHandler) GetTakeState(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	state, err := h.takeService.GetTakeState(c.Request.Context(), userID, quizID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// SubmitAnswer records one answer. Submitting against an already-taken quiz
// is a no-op that re-renders the taken state.
func (h *TakeHandler) SubmitAnswer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.takeService.SubmitAnswer(c.Request.Context(), userID, quizID, &req)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyTaken) {
			state, stateErr := h.takeService.GetTakeState(c.Request.Context(), userID, quizID)
			if stateErr != nil {
				respondError(c, stateErr)
				return
			}
			c.JSON(http.StatusOK, state)
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}
