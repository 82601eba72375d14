package services

import (
	"surveyquiz/models"

	"gorm.io/gorm"
)

type SubjectService struct {
	db *gorm.DB
}

func NewSubjectService(db *gorm.DB) *SubjectService {
	return &SubjectService{db: db}
}

func (s *SubjectService) GetSubjects() ([]models.Subject, error) {
	var subjects []models.Subject
	err := s.db.Order("name").Find(&subjects).Error
	return subjects, err
}

// Seed inserts the initial subjects once. Safe to run repeatedly.
func (s *SubjectService) Seed() error {
	seeds := []models.Subject{
		{Name: "Python", Color: "#343a40"},
		{Name: "Django", Color: "#007bff"},
		{Name: "Algorithms", Color: "#28a745"},
	}
	for _, subject := range seeds {
		err := s.db.Where("name = ?", subject.Name).
			FirstOrCreate(&subject).Error
		if err != nil {
			return err
		}
	}
	return nil
}
