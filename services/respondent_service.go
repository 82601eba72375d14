package services

import (
	"errors"
	"time"

	"surveyquiz/models"

	"gorm.io/gorm"
)

// RespondentService covers interest management and the respondent-facing
// quiz views. Discovery is a pure derived view: quizzes in the respondent's
// interest subjects, minus taken ones, minus quizzes without questions.
type RespondentService struct {
	db *gorm.DB
}

func NewRespondentService(db *gorm.DB) *RespondentService {
	return &RespondentService{db: db}
}

type UpdateInterestsRequest struct {
	SubjectIDs []uint `json:"subject_ids" binding:"required,min=1"`
}

// uniqueSubjectIDs collapses repeated IDs so a duplicated valid ID is not
// mistaken for a missing subject. Interests are a set.
func uniqueSubjectIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

// AvailableQuiz is a discovery list row.
type AvailableQuiz struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	SubjectID      uint   `json:"subject_id"`
	SubjectName    string `json:"subject_name"`
	SubjectColor   string `json:"subject_color"`
	QuestionsCount int64  `json:"questions_count"`
}

// TakenQuizRow is a row of the respondent's completed-quiz list.
type TakenQuizRow struct {
	QuizID       uint      `json:"quiz_id"`
	QuizName     string    `json:"quiz_name"`
	SubjectName  string    `json:"subject_name"`
	SubjectColor string    `json:"subject_color"`
	Score        float64   `json:"score"`
	Date         time.Time `json:"date"`
}

func (s *RespondentService) GetRespondent(userID uint) (*models.Respondent, error) {
	var respondent models.Respondent
	err := s.db.Preload("Interests").First(&respondent, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &respondent, nil
}

// UpdateInterests replaces the whole interest set. No history is kept.
func (s *RespondentService) UpdateInterests(userID uint, req *UpdateInterestsRequest) (*models.Respondent, error) {
	respondent, err := s.GetRespondent(userID)
	if err != nil {
		return nil, err
	}

	subjectIDs := uniqueSubjectIDs(req.SubjectIDs)
	var subjects []models.Subject
	if err := s.db.Find(&subjects, subjectIDs).Error; err != nil {
		return nil, err
	}
	if len(subjects) != len(subjectIDs) {
		return nil, ErrNotFound
	}

	if err := s.db.Model(respondent).Association("Interests").Replace(subjects); err != nil {
		return nil, err
	}

	return s.GetRespondent(userID)
}

// GetAvailableQuizzes computes the discovery list: subject in interests,
// not yet taken, at least one question. Ordered by quiz name.
func (s *RespondentService) GetAvailableQuizzes(userID uint) ([]AvailableQuiz, error) {
	if _, err := s.GetRespondent(userID); err != nil {
		return nil, err
	}

	interestIDs := s.db.Table("respondent_interests").
		Select("subject_id").
		Where("respondent_user_id = ?", userID)
	takenIDs := s.db.Model(&models.TakenQuiz{}).
		Select("quiz_id").
		Where("respondent_id = ?", userID)

	var quizzes []AvailableQuiz
	err := s.db.Table("quizzes").
		Select(`quizzes.id, quizzes.name, quizzes.subject_id,
			subjects.name AS subject_name, subjects.color AS subject_color,
			(SELECT COUNT(*) FROM questions WHERE questions.quiz_id = quizzes.id) AS questions_count`).
		Joins("JOIN subjects ON subjects.id = quizzes.subject_id").
		Where("quizzes.subject_id IN (?)", interestIDs).
		Where("quizzes.id NOT IN (?)", takenIDs).
		Where("(SELECT COUNT(*) FROM questions WHERE questions.quiz_id = quizzes.id) > 0").
		Order("quizzes.name").
		Scan(&quizzes).Error
	return quizzes, err
}

// GetTakenQuizzes lists the respondent's completed attempts ordered by quiz name.
func (s *RespondentService) GetTakenQuizzes(userID uint) ([]TakenQuizRow, error) {
	if _, err := s.GetRespondent(userID); err != nil {
		return nil, err
	}

	var rows []TakenQuizRow
	err := s.db.Table("taken_quizzes").
		Select(`taken_quizzes.quiz_id, quizzes.name AS quiz_name,
			subjects.name AS subject_name, subjects.color AS subject_color,
			taken_quizzes.score, taken_quizzes.date`).
		Joins("JOIN quizzes ON quizzes.id = taken_quizzes.quiz_id").
		Joins("JOIN subjects ON subjects.id = quizzes.subject_id").
		Where("taken_quizzes.respondent_id = ?", userID).
		Order("quizzes.name").
		Scan(&rows).Error
	return rows, err
}
