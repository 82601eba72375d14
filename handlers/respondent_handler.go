package handlers

import (
	"net/http"

	"surveyquiz/services"

	"github.com/gin-gonic/gin"
)

type RespondentHandler struct {
	respondentService *services.RespondentService
}

func NewRespondentHandler(respondentService *services.RespondentService) *RespondentHandler {
	return &RespondentHandler{
		respondentService: respondentService,
	}
}

// GetAvailableQuizzes is the discovery list: quizzes in the respondent's
// interest subjects, not taken yet, with at least one question.
func (h *RespondentHandler) GetAvailableQuizzes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	quizzes, err := h.respondentService.GetAvailableQuizzes(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quizzes)
}

func (h *RespondentHandler) GetInterests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	respondent, err := h.respondentService.GetRespondent(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, respondent.Interests)
}

func (h *RespondentHandler) UpdateInterests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateInterestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	respondent, err := h.respondentService.UpdateInterests(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, respondent.Interests)
}

func (h *RespondentHandler) GetTakenQuizzes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taken, err := h.respondentService.GetTakenQuizzes(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, taken)
}
