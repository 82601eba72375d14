package jobs

import (
	"log"
	"time"

	"surveyquiz/models"

	"gorm.io/gorm"
)

// DeactivateExpiredQuizzes flips is_active off for quizzes whose end date has
// passed. The flag is informational; discovery and quiz-taking do not depend
// on it.
func DeactivateExpiredQuizzes(db *gorm.DB) {
	result := db.Model(&models.Quiz{}).
		Where("is_active = ?", true).
		Where("end_date < ?", time.Now()).
		Update("is_active", false)
	if result.Error != nil {
		log.Printf("Failed to deactivate expired quizzes: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("Deactivated %d expired quizzes", result.RowsAffected)
	}
}
