package models

import (
	"time"
)

type RespondentAnswer struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RespondentID uint      `json:"respondent_id" gorm:"not null;index"`
	AnswerID     uint      `json:"answer_id" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`

	// Relationships
	Respondent Respondent `json:"respondent,omitempty" gorm:"foreignKey:RespondentID;references:UserID"`
	Answer     Answer     `json:"answer,omitempty"`
}
