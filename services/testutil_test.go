package services

import (
	"testing"

	"surveyquiz/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A single connection keeps every session on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.Quiz{},
		&models.Question{},
		&models.Answer{},
		&models.Respondent{},
		&models.TakenQuiz{},
		&models.RespondentAnswer{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createSubject(t *testing.T, db *gorm.DB, name string) *models.Subject {
	t.Helper()
	subject := models.Subject{Name: name, Color: "#007bff"}
	if err := db.Create(&subject).Error; err != nil {
		t.Fatalf("failed to create subject: %v", err)
	}
	return &subject
}

func createModerator(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{Username: username, PasswordHash: "x", IsModerator: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create moderator: %v", err)
	}
	return &user
}

func createRespondent(t *testing.T, db *gorm.DB, username string, interests ...*models.Subject) *models.Respondent {
	t.Helper()
	user := models.User{Username: username, PasswordHash: "x", IsRespondent: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create respondent user: %v", err)
	}
	respondent := models.Respondent{UserID: user.ID}
	if err := db.Create(&respondent).Error; err != nil {
		t.Fatalf("failed to create respondent: %v", err)
	}
	for _, subject := range interests {
		if err := db.Model(&respondent).Association("Interests").Append(subject); err != nil {
			t.Fatalf("failed to add interest: %v", err)
		}
	}
	return &respondent
}

func createQuiz(t *testing.T, db *gorm.DB, name string, ownerID uint, subjectID uint) *models.Quiz {
	t.Helper()
	quiz := models.Quiz{Name: name, OwnerID: ownerID, SubjectID: subjectID, IsActive: true}
	if err := db.Create(&quiz).Error; err != nil {
		t.Fatalf("failed to create quiz: %v", err)
	}
	return &quiz
}

// createQuestion adds a question with its answers; the texts in correct mark
// the right ones.
func createQuestion(t *testing.T, db *gorm.DB, quizID uint, text string, answerTexts []string, correct ...string) *models.Question {
	t.Helper()
	question := models.Question{QuizID: quizID, Text: text}
	if err := db.Create(&question).Error; err != nil {
		t.Fatalf("failed to create question: %v", err)
	}
	correctSet := make(map[string]bool, len(correct))
	for _, c := range correct {
		correctSet[c] = true
	}
	for _, answerText := range answerTexts {
		answer := models.Answer{
			QuestionID: question.ID,
			Text:       answerText,
			IsCorrect:  correctSet[answerText],
		}
		if err := db.Create(&answer).Error; err != nil {
			t.Fatalf("failed to create answer: %v", err)
		}
	}
	return &question
}

// correctAnswerID returns the id of the correct answer of a question.
func correctAnswerID(t *testing.T, db *gorm.DB, questionID uint) uint {
	t.Helper()
	var answer models.Answer
	if err := db.Where("question_id = ? AND is_correct = ?", questionID, true).First(&answer).Error; err != nil {
		t.Fatalf("failed to find correct answer: %v", err)
	}
	return answer.ID
}

// wrongAnswerID returns the id of some incorrect answer of a question.
func wrongAnswerID(t *testing.T, db *gorm.DB, questionID uint) uint {
	t.Helper()
	var answer models.Answer
	if err := db.Where("question_id = ? AND is_correct = ?", questionID, false).First(&answer).Error; err != nil {
		t.Fatalf("failed to find wrong answer: %v", err)
	}
	return answer.ID
}
