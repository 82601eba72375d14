package services

import (
	"errors"
	"strings"
	"time"

	"surveyquiz/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, jwtSecret: jwtSecret}
}

type SignUpRequest struct {
	Username string `json:"username" binding:"required,min=3,max=150"`
	Password string `json:"password" binding:"required,min=6"`
}

type RespondentSignUpRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=150"`
	Password   string `json:"password" binding:"required,min=6"`
	SubjectIDs []uint `json:"subject_ids" binding:"required,min=1"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterModerator creates a user carrying the moderator role flag.
func (s *AuthService) RegisterModerator(req *SignUpRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		IsModerator:  true,
	}

	if err := s.db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return &user, nil
}

// RegisterRespondent creates the user, its respondent profile and the initial
// interest set in a single transaction.
func (s *AuthService) RegisterRespondent(req *RespondentSignUpRequest) (*models.User, error) {
	if len(req.SubjectIDs) == 0 {
		return nil, ErrInterestsRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
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

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		IsRespondent: true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		respondent := models.Respondent{UserID: user.ID}
		if err := tx.Create(&respondent).Error; err != nil {
			return err
		}
		return tx.Model(&respondent).Association("Interests").Append(subjects)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return &user, nil
}

// Login verifies credentials and issues a JWT carrying the role flags.
func (s *AuthService) Login(req *LoginRequest) (string, *models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":       user.ID,
		"is_moderator":  user.IsModerator,
		"is_respondent": user.IsRespondent,
		"exp":           time.Now().Add(24 * time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", nil, err
	}

	return signed, &user, nil
}

// GetProfile returns the current user with role flags.
func (s *AuthService) GetProfile(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// isUniqueViolation matches duplicate-key failures across the postgres and
// sqlite drivers without importing either.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
