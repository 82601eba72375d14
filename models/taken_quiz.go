package models

import (
	"time"
)

// TakenQuiz is the immutable record of a completed attempt. The composite
// unique index makes completion an insert-if-absent operation.
type TakenQuiz struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RespondentID uint      `json:"respondent_id" gorm:"not null;uniqueIndex:idx_taken_respondent_quiz"`
	QuizID       uint      `json:"quiz_id" gorm:"not null;uniqueIndex:idx_taken_respondent_quiz"`
	Score        float64   `json:"score" gorm:"not null"` // 0..100, two decimals
	Date         time.Time `json:"date" gorm:"autoCreateTime"`

	// Relationships
	Respondent Respondent `json:"respondent,omitempty" gorm:"foreignKey:RespondentID;references:UserID"`
	Quiz       Quiz       `json:"quiz,omitempty"`
}
