package services

import "errors"

var (
	// ErrNotFound covers both genuinely missing records and ownership
	// mismatches, so callers cannot distinguish "not yours" from "not there".
	ErrNotFound = errors.New("not found")
	// ErrNoCorrectAnswer rejects an answer-set save with no correct answer marked.
	ErrNoCorrectAnswer = errors.New("mark at least one answer as correct")
	// ErrAnswerCountOutOfRange rejects answer sets outside the 2..10 range.
	ErrAnswerCountOutOfRange = errors.New("a question must have between 2 and 10 answers")
	// ErrAlreadyTaken signals a submission against a completed quiz.
	ErrAlreadyTaken = errors.New("quiz already taken")
	// ErrNoQuestions signals a quiz with nothing to present.
	ErrNoQuestions = errors.New("quiz has no questions")
	// ErrInvalidAnswer signals a chosen answer that does not belong to an
	// unanswered question of the quiz being taken.
	ErrInvalidAnswer = errors.New("invalid answer selection")
	// ErrInvalidCredentials signals a failed login.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken signals a signup with a duplicate username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInterestsRequired signals a respondent signup without subjects.
	ErrInterestsRequired = errors.New("select at least one subject of interest")
)
