package models

import (
	"time"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	IsModerator  bool      `json:"is_moderator" gorm:"not null;default:false"`
	IsRespondent bool      `json:"is_respondent" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships
	Quizzes    []Quiz      `json:"quizzes,omitempty" gorm:"foreignKey:OwnerID"`
	Respondent *Respondent `json:"respondent,omitempty" gorm:"foreignKey:UserID"`
}
