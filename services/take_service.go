package services

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"surveyquiz/models"

	"gorm.io/gorm"
)

// CompletionNotifier receives an event whenever a respondent completes a quiz.
type CompletionNotifier interface {
	QuizCompleted(quizID uint, event CompletionEvent)
}

type CompletionEvent struct {
	QuizID     uint      `json:"quiz_id"`
	Respondent string    `json:"respondent"`
	Score      float64   `json:"score"`
	Date       time.Time `json:"date"`
}

// TakeService drives the stateless-per-request quiz-taking flow: find the
// next unanswered question, accept one answer, and on the last answer record
// the completion in the same transaction.
type TakeService struct {
	db       *gorm.DB
	cache    *TakeCache
	notifier CompletionNotifier
}

func NewTakeService(db *gorm.DB, cache *TakeCache, notifier CompletionNotifier) *TakeService {
	return &TakeService{db: db, cache: cache, notifier: notifier}
}

type SubmitAnswerRequest struct {
	AnswerID uint `json:"answer_id" binding:"required"`
}

// TakeState is what a respondent sees for a quiz at any point of the flow.
type TakeState struct {
	QuizID         uint          `json:"quiz_id"`
	QuizName       string        `json:"quiz_name"`
	AlreadyTaken   bool          `json:"already_taken"`
	Score          *float64      `json:"score,omitempty"`
	TotalQuestions int           `json:"total_questions"`
	Answered       int           `json:"answered"`
	Progress       int           `json:"progress"`
	Question       *TakeQuestion `json:"question,omitempty"`
}

type TakeQuestion struct {
	ID      uint         `json:"id"`
	Text    string       `json:"text"`
	Answers []TakeAnswer `json:"answers"`
}

// TakeAnswer never carries the is_correct flag.
type TakeAnswer struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// GetTakeState returns the current state of the flow for (respondent, quiz).
// Completion is derived from the unanswered set being empty, not from the
// TakenQuiz record alone, so a respondent who answered everything is never
// stuck without a completion record.
func (s *TakeService) GetTakeState(ctx context.Context, userID uint, quizID uint) (*TakeState, error) {
	if s.cache != nil {
		if state, ok := s.cache.Get(ctx, userID, quizID); ok {
			return state, nil
		}
	}

	state, err := s.computeTakeState(s.db, userID, quizID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, userID, quizID, state)
	}
	return state, nil
}

// SubmitAnswer records the chosen answer atomically with the read that
// decides the next transition. When the last question is answered, the score
// and the TakenQuiz row are written inside the same transaction,
// insert-if-absent.
func (s *TakeService) SubmitAnswer(ctx context.Context, userID uint, quizID uint, req *SubmitAnswerRequest) (*TakeState, error) {
	respondent, err := s.getRespondent(s.db, userID)
	if err != nil {
		return nil, err
	}

	var quiz models.Quiz
	if err := s.db.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var completion *CompletionEvent

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var taken models.TakenQuiz
		err := tx.Where("respondent_id = ? AND quiz_id = ?", respondent.UserID, quizID).First(&taken).Error
		if err == nil {
			return ErrAlreadyTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var answer models.Answer
		if err := tx.Preload("Question").First(&answer, req.AnswerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidAnswer
			}
			return err
		}
		if answer.Question.QuizID != quizID {
			return ErrInvalidAnswer
		}

		// The chosen answer must belong to a question the respondent has
		// not answered yet.
		var already int64
		err = tx.Model(&models.RespondentAnswer{}).
			Joins("JOIN answers ON answers.id = respondent_answers.answer_id").
			Where("respondent_answers.respondent_id = ? AND answers.question_id = ?",
				respondent.UserID, answer.QuestionID).
			Count(&already).Error
		if err != nil {
			return err
		}
		if already > 0 {
			return ErrInvalidAnswer
		}

		record := models.RespondentAnswer{
			RespondentID: respondent.UserID,
			AnswerID:     answer.ID,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		remaining, err := s.countUnanswered(tx, respondent.UserID, quizID)
		if err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}

		event, err := s.finalize(tx, respondent.UserID, quizID)
		if err != nil {
			return err
		}
		completion = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, userID, quizID)
	}

	if completion != nil {
		log.Printf("Respondent %d completed quiz %d with score %.2f", userID, quizID, completion.Score)
		if s.notifier != nil {
			s.notifier.QuizCompleted(quizID, *completion)
		}
	}

	return s.computeTakeState(s.db, userID, quizID)
}

func (s *TakeService) getRespondent(db *gorm.DB, userID uint) (*models.Respondent, error) {
	var respondent models.Respondent
	if err := db.First(&respondent, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &respondent, nil
}

// answeredQuestionIDs is the subquery of question ids the respondent has
// already answered, via the answers they picked.
func (s *TakeService) answeredQuestionIDs(db *gorm.DB, respondentID uint) *gorm.DB {
	return db.Model(&models.RespondentAnswer{}).
		Select("answers.question_id").
		Joins("JOIN answers ON answers.id = respondent_answers.answer_id").
		Where("respondent_answers.respondent_id = ?", respondentID)
}

func (s *TakeService) countUnanswered(db *gorm.DB, respondentID uint, quizID uint) (int64, error) {
	var count int64
	err := db.Model(&models.Question{}).
		Where("quiz_id = ?", quizID).
		Where("id NOT IN (?)", s.answeredQuestionIDs(db, respondentID)).
		Count(&count).Error
	return count, err
}

// finalize computes the score and records the completion, insert-if-absent.
// Callers invoke it once the unanswered set is empty, inside the transaction
// that made it empty.
func (s *TakeService) finalize(tx *gorm.DB, respondentID uint, quizID uint) (*CompletionEvent, error) {
	var total int64
	if err := tx.Model(&models.Question{}).Where("quiz_id = ?", quizID).Count(&total).Error; err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrNoQuestions
	}

	var correct int64
	err := tx.Model(&models.RespondentAnswer{}).
		Joins("JOIN answers ON answers.id = respondent_answers.answer_id").
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("respondent_answers.respondent_id = ?", respondentID).
		Where("questions.quiz_id = ?", quizID).
		Where("answers.is_correct = ?", true).
		Count(&correct).Error
	if err != nil {
		return nil, err
	}

	score := round2(float64(correct) / float64(total) * 100.0)

	taken := models.TakenQuiz{
		RespondentID: respondentID,
		QuizID:       quizID,
	}
	err = tx.Where("respondent_id = ? AND quiz_id = ?", respondentID, quizID).
		Attrs(models.TakenQuiz{Score: score, Date: time.Now()}).
		FirstOrCreate(&taken).Error
	if err != nil {
		return nil, err
	}

	var username string
	err = tx.Model(&models.User{}).Select("username").Where("id = ?", respondentID).Scan(&username).Error
	if err != nil {
		return nil, err
	}

	return &CompletionEvent{
		QuizID:     quizID,
		Respondent: username,
		Score:      taken.Score,
		Date:       taken.Date,
	}, nil
}

func (s *TakeService) computeTakeState(db *gorm.DB, userID uint, quizID uint) (*TakeState, error) {
	respondent, err := s.getRespondent(db, userID)
	if err != nil {
		return nil, err
	}

	var quiz models.Quiz
	if err := db.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var total int64
	if err := db.Model(&models.Question{}).Where("quiz_id = ?", quizID).Count(&total).Error; err != nil {
		return nil, err
	}

	state := &TakeState{
		QuizID:         quiz.ID,
		QuizName:       quiz.Name,
		TotalQuestions: int(total),
	}

	var taken models.TakenQuiz
	err = db.Where("respondent_id = ? AND quiz_id = ?", respondent.UserID, quizID).First(&taken).Error
	if err == nil {
		state.AlreadyTaken = true
		state.Score = &taken.Score
		state.Answered = state.TotalQuestions
		state.Progress = 100
		return state, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if total == 0 {
		// Discovery filters these out, but the quiz is still reachable by
		// id. There is no question to show and no progress to divide.
		return nil, ErrNoQuestions
	}

	var unanswered []models.Question
	err = db.Where("quiz_id = ?", quizID).
		Where("id NOT IN (?)", s.answeredQuestionIDs(db, respondent.UserID)).
		Order("text").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.text")
		}).
		Find(&unanswered).Error
	if err != nil {
		return nil, err
	}

	if len(unanswered) == 0 {
		// Everything is answered but no completion record exists. Recover by
		// finalizing now instead of leaving the respondent in limbo.
		var event *CompletionEvent
		err := db.Transaction(func(tx *gorm.DB) error {
			var txErr error
			event, txErr = s.finalize(tx, respondent.UserID, quizID)
			return txErr
		})
		if err != nil {
			return nil, err
		}
		state.AlreadyTaken = true
		state.Score = &event.Score
		state.Answered = state.TotalQuestions
		state.Progress = 100
		return state, nil
	}

	state.Answered = state.TotalQuestions - len(unanswered)
	state.Progress = 100 - int(math.Round(float64(len(unanswered)-1)/float64(total)*100.0))

	next := unanswered[0]
	question := &TakeQuestion{
		ID:      next.ID,
		Text:    next.Text,
		Answers: make([]TakeAnswer, 0, len(next.Answers)),
	}
	for _, a := range next.Answers {
		question.Answers = append(question.Answers, TakeAnswer{ID: a.ID, Text: a.Text})
	}
	state.Question = question

	return state, nil
}

func round2(x float64) float64 {
	return math.Round(x*100.0) / 100.0
}
