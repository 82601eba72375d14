package services

import (
	"errors"
	"testing"

	"surveyquiz/models"
)

func TestRegisterAndLoginModerator(t *testing.T) {
	db := newTestDB(t)
	service := NewAuthService(db, "test-secret")

	user, err := service.RegisterModerator(&SignUpRequest{Username: "alice", Password: "hunter22"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !user.IsModerator || user.IsRespondent {
		t.Fatalf("expected moderator-only flags, got %+v", user)
	}

	token, logged, err := service.Login(&LoginRequest{Username: "alice", Password: "hunter22"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	if logged.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, logged.ID)
	}

	_, _, err = service.Login(&LoginRequest{Username: "alice", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	_, _, err = service.Login(&LoginRequest{Username: "nobody", Password: "hunter22"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	service := NewAuthService(db, "test-secret")

	if _, err := service.RegisterModerator(&SignUpRequest{Username: "alice", Password: "hunter22"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, err := service.RegisterModerator(&SignUpRequest{Username: "alice", Password: "other"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegisterRespondentCreatesProfileAndInterests(t *testing.T) {
	db := newTestDB(t)
	service := NewAuthService(db, "test-secret")
	python := createSubject(t, db, "Python")
	django := createSubject(t, db, "Django")

	user, err := service.RegisterRespondent(&RespondentSignUpRequest{
		Username:   "bob",
		Password:   "hunter22",
		SubjectIDs: []uint{python.ID, django.ID},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !user.IsRespondent || user.IsModerator {
		t.Fatalf("expected respondent-only flags, got %+v", user)
	}

	var respondent models.Respondent
	if err := db.Preload("Interests").First(&respondent, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("respondent profile missing: %v", err)
	}
	if len(respondent.Interests) != 2 {
		t.Fatalf("expected 2 interests, got %d", len(respondent.Interests))
	}
}

func TestRegisterRespondentDuplicateSubjectIDs(t *testing.T) {
	db := newTestDB(t)
	service := NewAuthService(db, "test-secret")
	python := createSubject(t, db, "Python")

	user, err := service.RegisterRespondent(&RespondentSignUpRequest{
		Username:   "bob",
		Password:   "hunter22",
		SubjectIDs: []uint{python.ID, python.ID},
	})
	if err != nil {
		t.Fatalf("register with duplicate subject IDs failed: %v", err)
	}

	var respondent models.Respondent
	if err := db.Preload("Interests").First(&respondent, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("respondent profile missing: %v", err)
	}
	if len(respondent.Interests) != 1 {
		t.Fatalf("expected 1 interest, got %d", len(respondent.Interests))
	}
}

func TestRegisterRespondentRequiresInterests(t *testing.T) {
	db := newTestDB(t)
	service := NewAuthService(db, "test-secret")

	_, err := service.RegisterRespondent(&RespondentSignUpRequest{
		Username: "bob",
		Password: "hunter22",
	})
	if !errors.Is(err, ErrInterestsRequired) {
		t.Fatalf("expected ErrInterestsRequired, got %v", err)
	}

	_, err = service.RegisterRespondent(&RespondentSignUpRequest{
		Username:   "bob",
		Password:   "hunter22",
		SubjectIDs: []uint{42},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown subject, got %v", err)
	}
}
