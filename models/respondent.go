package models

import (
	"time"
)

type Respondent struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User         User        `json:"user,omitempty"`
	Interests    []Subject   `json:"interests,omitempty" gorm:"many2many:respondent_interests"`
	TakenQuizzes []TakenQuiz `json:"taken_quizzes,omitempty" gorm:"foreignKey:RespondentID"`
}
