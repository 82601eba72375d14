package services

import (
	"errors"
	"time"

	"surveyquiz/models"

	"gorm.io/gorm"
)

// QuizService implements the moderator authoring operations. Every lookup is
// scoped to (id, owner_id) so a foreign quiz is indistinguishable from a
// missing one.
type QuizService struct {
	db *gorm.DB
}

func NewQuizService(db *gorm.DB) *QuizService {
	return &QuizService{db: db}
}

const (
	minAnswersPerQuestion = 2
	maxAnswersPerQuestion = 10
)

type CreateQuizRequest struct {
	Name      string    `json:"name" binding:"required,max=255"`
	SubjectID uint      `json:"subject_id" binding:"required"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  *bool     `json:"is_active"`
}

type UpdateQuizRequest struct {
	Name      string `json:"name" binding:"required,max=255"`
	SubjectID uint   `json:"subject_id" binding:"required"`
}

type CreateQuestionRequest struct {
	Text string `json:"text" binding:"required,max=255"`
}

type UpdateQuestionRequest struct {
	Text    string          `json:"text" binding:"required,max=255"`
	Answers []AnswerRequest `json:"answers" binding:"required"`
}

type AnswerRequest struct {
	Text      string `json:"text" binding:"required,max=255"`
	IsCorrect bool   `json:"is_correct"`
}

// OwnedQuizSummary is the moderator list row: quiz plus subject and the
// question/taken counts.
type OwnedQuizSummary struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	SubjectID      uint      `json:"subject_id"`
	SubjectName    string    `json:"subject_name"`
	SubjectColor   string    `json:"subject_color"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	IsActive       bool      `json:"is_active"`
	QuestionsCount int64     `json:"questions_count"`
	TakenCount     int64     `json:"taken_count"`
}

type QuizResultRow struct {
	Respondent string    `json:"respondent"`
	Score      float64   `json:"score"`
	Date       time.Time `json:"date"`
}

type QuizResults struct {
	Quiz         *models.Quiz    `json:"quiz"`
	TakenQuizzes []QuizResultRow `json:"taken_quizzes"`
	TotalTaken   int64           `json:"total_taken"`
	AverageScore float64         `json:"average_score"`
}

func (s *QuizService) CreateQuiz(ownerID uint, req *CreateQuizRequest) (*models.Quiz, error) {
	var subject models.Subject
	if err := s.db.First(&subject, req.SubjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	quiz := models.Quiz{
		Name:      req.Name,
		OwnerID:   ownerID,
		SubjectID: req.SubjectID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsActive:  true,
	}
	if quiz.StartDate.IsZero() {
		quiz.StartDate = now
	}
	if quiz.EndDate.IsZero() {
		quiz.EndDate = now
	}
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}

	if err := s.db.Create(&quiz).Error; err != nil {
		return nil, err
	}

	return s.GetQuizByID(quiz.ID, ownerID)
}

// GetOwnedQuizzes lists the moderator's quizzes ordered by name, annotated
// with question and taken counts.
func (s *QuizService) GetOwnedQuizzes(ownerID uint) ([]OwnedQuizSummary, error) {
	var summaries []OwnedQuizSummary
	err := s.db.Table("quizzes").
		Select(`quizzes.id, quizzes.name, quizzes.subject_id,
			subjects.name AS subject_name, subjects.color AS subject_color,
			quizzes.start_date, quizzes.end_date, quizzes.is_active,
			(SELECT COUNT(*) FROM questions WHERE questions.quiz_id = quizzes.id) AS questions_count,
			(SELECT COUNT(*) FROM taken_quizzes WHERE taken_quizzes.quiz_id = quizzes.id) AS taken_count`).
		Joins("JOIN subjects ON subjects.id = quizzes.subject_id").
		Where("quizzes.owner_id = ?", ownerID).
		Order("quizzes.name").
		Scan(&summaries).Error
	return summaries, err
}

// GetQuizByID loads an owned quiz with its questions and answers. Returns
// ErrNotFound for both missing and foreign quizzes.
func (s *QuizService) GetQuizByID(quizID uint, ownerID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.Where("id = ? AND owner_id = ?", quizID, ownerID).
		Preload("Subject").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.text")
		}).
		Preload("Questions.Answers").
		First(&quiz).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

func (s *QuizService) UpdateQuiz(quizID uint, ownerID uint, req *UpdateQuizRequest) (*models.Quiz, error) {
	quiz, err := s.GetQuizByID(quizID, ownerID)
	if err != nil {
		return nil, err
	}

	var subject models.Subject
	if err := s.db.First(&subject, req.SubjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.db.Model(quiz).Updates(map[string]interface{}{
		"name":       req.Name,
		"subject_id": req.SubjectID,
	}).Error; err != nil {
		return nil, err
	}

	return s.GetQuizByID(quizID, ownerID)
}

// DeleteQuiz removes an owned quiz and everything under it. Children are
// deleted explicitly so the cascade does not depend on database-level
// foreign key enforcement.
func (s *QuizService) DeleteQuiz(quizID uint, ownerID uint) error {
	if _, err := s.GetQuizByID(quizID, ownerID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		questionIDs := tx.Model(&models.Question{}).Select("id").Where("quiz_id = ?", quizID)
		answerIDs := tx.Model(&models.Answer{}).Select("id").Where("question_id IN (?)", questionIDs)

		if err := tx.Where("answer_id IN (?)", answerIDs).Delete(&models.RespondentAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id IN (?)", questionIDs).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quizID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quizID).Delete(&models.TakenQuiz{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Quiz{}, quizID).Error
	})
}

func (s *QuizService) AddQuestion(quizID uint, ownerID uint, req *CreateQuestionRequest) (*models.Question, error) {
	if _, err := s.GetQuizByID(quizID, ownerID); err != nil {
		return nil, err
	}

	question := models.Question{
		QuizID: quizID,
		Text:   req.Text,
	}
	if err := s.db.Create(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// GetQuestionByID loads a question through the owned quiz, so both the quiz
// and the question membership are checked in one place.
func (s *QuizService) GetQuestionByID(quizID, questionID, ownerID uint) (*models.Question, error) {
	if _, err := s.GetQuizByID(quizID, ownerID); err != nil {
		return nil, err
	}

	var question models.Question
	err := s.db.Where("id = ? AND quiz_id = ?", questionID, quizID).
		Preload("Answers").
		First(&question).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// UpdateQuestion saves the question text and its full replacement answer set
// as a single unit. The set is validated before anything is written: between
// 2 and 10 answers, at least one marked correct.
func (s *QuizService) UpdateQuestion(quizID, questionID, ownerID uint, req *UpdateQuestionRequest) (*models.Question, error) {
	question, err := s.GetQuestionByID(quizID, questionID, ownerID)
	if err != nil {
		return nil, err
	}

	if len(req.Answers) < minAnswersPerQuestion || len(req.Answers) > maxAnswersPerQuestion {
		return nil, ErrAnswerCountOutOfRange
	}
	hasCorrect := false
	for _, a := range req.Answers {
		if a.IsCorrect {
			hasCorrect = true
			break
		}
	}
	if !hasCorrect {
		return nil, ErrNoCorrectAnswer
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(question).Update("text", req.Text).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		for _, a := range req.Answers {
			answer := models.Answer{
				QuestionID: question.ID,
				Text:       a.Text,
				IsCorrect:  a.IsCorrect,
			}
			if err := tx.Create(&answer).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetQuestionByID(quizID, questionID, ownerID)
}

func (s *QuizService) DeleteQuestion(quizID, questionID, ownerID uint) error {
	question, err := s.GetQuestionByID(quizID, questionID, ownerID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		answerIDs := tx.Model(&models.Answer{}).Select("id").Where("question_id = ?", question.ID)
		if err := tx.Where("answer_id IN (?)", answerIDs).Delete(&models.RespondentAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Question{}, question.ID).Error
	})
}

// GetQuizResults lists every completed attempt of an owned quiz, newest
// first, along with the attempt count and the mean score.
func (s *QuizService) GetQuizResults(quizID uint, ownerID uint) (*QuizResults, error) {
	quiz, err := s.GetQuizByID(quizID, ownerID)
	if err != nil {
		return nil, err
	}

	var rows []QuizResultRow
	err = s.db.Table("taken_quizzes").
		Select("users.username AS respondent, taken_quizzes.score, taken_quizzes.date").
		Joins("JOIN respondents ON respondents.user_id = taken_quizzes.respondent_id").
		Joins("JOIN users ON users.id = respondents.user_id").
		Where("taken_quizzes.quiz_id = ?", quizID).
		Order("taken_quizzes.date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var average float64
	err = s.db.Model(&models.TakenQuiz{}).
		Where("quiz_id = ?", quizID).
		Select("COALESCE(AVG(score), 0)").
		Scan(&average).Error
	if err != nil {
		return nil, err
	}

	return &QuizResults{
		Quiz:         quiz,
		TakenQuizzes: rows,
		TotalTaken:   int64(len(rows)),
		AverageScore: average,
	}, nil
}
