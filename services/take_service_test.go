package services

import (
	"context"
	"errors"
	"testing"

	"surveyquiz/models"

	"gorm.io/gorm"
)

type recordingNotifier struct {
	events []CompletionEvent
}

func (n *recordingNotifier) QuizCompleted(quizID uint, event CompletionEvent) {
	n.events = append(n.events, event)
}

// takeFixture is the standing setup of the take tests: one subject, one
// owner, a respondent interested in the subject, and a quiz.
type takeFixture struct {
	db         *gorm.DB
	service    *TakeService
	notifier   *recordingNotifier
	respondent *models.Respondent
	quiz       *models.Quiz
	subject    *models.Subject
}

func newTakeFixture(t *testing.T) *takeFixture {
	t.Helper()
	db := newTestDB(t)
	subject := createSubject(t, db, "Python")
	owner := createModerator(t, db, "alice")
	respondent := createRespondent(t, db, "bob", subject)
	quiz := createQuiz(t, db, "Basics", owner.ID, subject.ID)
	notifier := &recordingNotifier{}
	return &takeFixture{
		db:         db,
		service:    NewTakeService(db, nil, notifier),
		notifier:   notifier,
		respondent: respondent,
		quiz:       quiz,
		subject:    subject,
	}
}

// answerAll submits the correct answer for the first `correct` questions
// presented and a wrong answer for the rest, following the flow the way a
// client would: always answering the question the state shows.
func (f *takeFixture) answerAll(t *testing.T, correct int) *TakeState {
	t.Helper()
	ctx := context.Background()
	var state *TakeState
	var err error
	for i := 0; ; i++ {
		state, err = f.service.GetTakeState(ctx, f.respondent.UserID, f.quiz.ID)
		if err != nil {
			t.Fatalf("take state failed: %v", err)
		}
		if state.AlreadyTaken {
			return state
		}
		var answerID uint
		if i < correct {
			answerID = correctAnswerID(t, f.db, state.Question.ID)
		} else {
			answerID = wrongAnswerID(t, f.db, state.Question.ID)
		}
		state, err = f.service.SubmitAnswer(ctx, f.respondent.UserID, f.quiz.ID, &SubmitAnswerRequest{AnswerID: answerID})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if state.AlreadyTaken {
			return state
		}
	}
}

func TestScoreProportions(t *testing.T) {
	cases := []struct {
		name      string
		questions int
		correct   int
		want      float64
	}{
		{"all correct", 2, 2, 100},
		{"half correct", 2, 1, 50},
		{"none correct", 2, 0, 0},
		{"one of three", 3, 1, 33.33},
		{"two of three", 3, 2, 66.67},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newTakeFixture(t)
			for i := 0; i < tc.questions; i++ {
				createQuestion(t, f.db, f.quiz.ID, string(rune('a'+i))+" question",
					[]string{"right", "wrong"}, "right")
			}

			state := f.answerAll(t, tc.correct)
			if !state.AlreadyTaken {
				t.Fatal("expected quiz to be completed")
			}
			if state.Score == nil || *state.Score != tc.want {
				t.Fatalf("expected score %v, got %v", tc.want, state.Score)
			}
		})
	}
}

func TestCompletionCreatesExactlyOneTakenQuiz(t *testing.T) {
	f := newTakeFixture(t)
	createQuestion(t, f.db, f.quiz.ID, "q1", []string{"right", "wrong"}, "right")
	createQuestion(t, f.db, f.quiz.ID, "q2", []string{"right", "wrong"}, "right")

	f.answerAll(t, 2)

	var count int64
	f.db.Model(&models.TakenQuiz{}).
		Where("respondent_id = ? AND quiz_id = ?", f.respondent.UserID, f.quiz.ID).
		Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one TakenQuiz, got %d", count)
	}

	// The quiz disappears from discovery.
	respondentService := NewRespondentService(f.db)
	available, err := respondentService.GetAvailableQuizzes(f.respondent.UserID)
	if err != nil {
		t.Fatalf("discovery failed: %v", err)
	}
	for _, quiz := range available {
		if quiz.ID == f.quiz.ID {
			t.Fatal("completed quiz still in discovery list")
		}
	}

	if len(f.notifier.events) != 1 {
		t.Fatalf("expected one completion event, got %d", len(f.notifier.events))
	}
	if f.notifier.events[0].Respondent != "bob" || f.notifier.events[0].Score != 100 {
		t.Fatalf("unexpected completion event: %+v", f.notifier.events[0])
	}
}

func TestAlreadyTakenSubmitIsNoOp(t *testing.T) {
	f := newTakeFixture(t)
	question := createQuestion(t, f.db, f.quiz.ID, "q1", []string{"right", "wrong"}, "right")
	f.answerAll(t, 1)

	answersBefore := tableCount(f.db, &models.RespondentAnswer{})
	takenBefore := tableCount(f.db, &models.TakenQuiz{})

	_, err := f.service.SubmitAnswer(context.Background(), f.respondent.UserID, f.quiz.ID,
		&SubmitAnswerRequest{AnswerID: wrongAnswerID(t, f.db, question.ID)})
	if !errors.Is(err, ErrAlreadyTaken) {
		t.Fatalf("expected ErrAlreadyTaken, got %v", err)
	}

	if got := tableCount(f.db, &models.RespondentAnswer{}); got != answersBefore {
		t.Fatalf("respondent answers changed: %d -> %d", answersBefore, got)
	}
	if got := tableCount(f.db, &models.TakenQuiz{}); got != takenBefore {
		t.Fatalf("taken quizzes changed: %d -> %d", takenBefore, got)
	}

	state, err := f.service.GetTakeState(context.Background(), f.respondent.UserID, f.quiz.ID)
	if err != nil {
		t.Fatalf("take state failed: %v", err)
	}
	if !state.AlreadyTaken {
		t.Fatal("expected already-taken state")
	}
}

func TestQuestionAndAnswerOrderingIsLexical(t *testing.T) {
	f := newTakeFixture(t)
	// Created in reverse lexical order on purpose.
	createQuestion(t, f.db, f.quiz.ID, "zebra question", []string{"delta", "alpha"}, "alpha")
	createQuestion(t, f.db, f.quiz.ID, "apple question", []string{"omega", "beta", "gamma"}, "beta")

	state, err := f.service.GetTakeState(context.Background(), f.respondent.UserID, f.quiz.ID)
	if err != nil {
		t.Fatalf("take state failed: %v", err)
	}
	if state.Question == nil || state.Question.Text != "apple question" {
		t.Fatalf("expected lexically first question, got %+v", state.Question)
	}

	got := make([]string, 0, len(state.Question.Answers))
	for _, a := range state.Question.Answers {
		got = append(got, a.Text)
	}
	want := []string{"beta", "gamma", "omega"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected answers %v, got %v", want, got)
		}
	}
}

func TestProgressPerQuestion(t *testing.T) {
	f := newTakeFixture(t)
	createQuestion(t, f.db, f.quiz.ID, "q1", []string{"right", "wrong"}, "right")
	createQuestion(t, f.db, f.quiz.ID, "q2", []string{"right", "wrong"}, "right")

	ctx := context.Background()
	state, err := f.service.GetTakeState(ctx, f.respondent.UserID, f.quiz.ID)
	if err != nil {
		t.Fatalf("take state failed: %v", err)
	}
	// 100 - round(((2-1)/2)*100) = 50
	if state.Progress != 50 {
		t.Fatalf("expected progress 50 on first question, got %d", state.Progress)
	}

	state, err = f.service.SubmitAnswer(ctx, f.respondent.UserID, f.quiz.ID,
		&SubmitAnswerRequest{AnswerID: correctAnswerID(t, f.db, state.Question.ID)})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	// 100 - round(((1-1)/2)*100) = 100 on the last question
	if state.Progress != 100 {
		t.Fatalf("expected progress 100 on last question, got %d", state.Progress)
	}
	if state.Answered != 1 {
		t.Fatalf("expected 1 answered, got %d", state.Answered)
	}
}

func TestZeroQuestionQuizIsGuarded(t *testing.T) {
	f := newTakeFixture(t)

	_, err := f.service.GetTakeState(context.Background(), f.respondent.UserID, f.quiz.ID)
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestInvalidAnswerSelections(t *testing.T) {
	f := newTakeFixture(t)
	question := createQuestion(t, f.db, f.quiz.ID, "q1", []string{"right", "wrong"}, "right")
	createQuestion(t, f.db, f.quiz.ID, "q2", []string{"right", "wrong"}, "right")

	otherQuiz := createQuiz(t, f.db, "Other", f.quiz.OwnerID, f.subject.ID)
	foreign := createQuestion(t, f.db, otherQuiz.ID, "fq", []string{"right", "wrong"}, "right")

	ctx := context.Background()

	// Unknown answer id.
	_, err := f.service.SubmitAnswer(ctx, f.respondent.UserID, f.quiz.ID, &SubmitAnswerRequest{AnswerID: 9999})
	if !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer for unknown id, got %v", err)
	}

	// Answer from a different quiz.
	_, err = f.service.SubmitAnswer(ctx, f.respondent.UserID, f.quiz.ID,
		&SubmitAnswerRequest{AnswerID: correctAnswerID(t, f.db, foreign.ID)})
	if !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer for foreign answer, got %v", err)
	}

	// Second answer for an already-answered question.
	if _, err := f.service.SubmitAnswer(ctx, f.respondent.UserID, f.quiz.ID,
		&SubmitAnswerRequest{AnswerID: correctAnswerID(t, f.db, question.ID)}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	_, err = f.service.SubmitAnswer(ctx, f.respondent.UserID, f.quiz.ID,
		&SubmitAnswerRequest{AnswerID: wrongAnswerID(t, f.db, question.ID)})
	if !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer for double submit, got %v", err)
	}

	// Nothing but the one valid record was committed.
	if got := tableCount(f.db, &models.RespondentAnswer{}); got != 1 {
		t.Fatalf("expected 1 respondent answer, got %d", got)
	}
}

// A respondent who has every question answered but no completion record
// (the legacy two-phase gap) is finalized on the next read.
func TestLimboRespondentIsFinalizedOnRead(t *testing.T) {
	f := newTakeFixture(t)
	q1 := createQuestion(t, f.db, f.quiz.ID, "q1", []string{"right", "wrong"}, "right")
	q2 := createQuestion(t, f.db, f.quiz.ID, "q2", []string{"right", "wrong"}, "right")

	// Simulate the crash window: answers recorded, no TakenQuiz.
	for _, q := range []*models.Question{q1, q2} {
		record := models.RespondentAnswer{RespondentID: f.respondent.UserID, AnswerID: correctAnswerID(t, f.db, q.ID)}
		if err := f.db.Create(&record).Error; err != nil {
			t.Fatalf("failed to seed answer: %v", err)
		}
	}

	state, err := f.service.GetTakeState(context.Background(), f.respondent.UserID, f.quiz.ID)
	if err != nil {
		t.Fatalf("take state failed: %v", err)
	}
	if !state.AlreadyTaken {
		t.Fatal("expected limbo respondent to be finalized")
	}
	if state.Score == nil || *state.Score != 100 {
		t.Fatalf("expected recovered score 100, got %v", state.Score)
	}
	if count := tableCount(f.db, &models.TakenQuiz{}); count != 1 {
		t.Fatalf("expected one TakenQuiz after recovery, got %d", count)
	}
}

// The end-to-end example: quiz "Basics" with 2 questions of 3 answers each.
func TestBasicsEndToEnd(t *testing.T) {
	f := newTakeFixture(t)
	createQuestion(t, f.db, f.quiz.ID, "What is a list?", []string{"right", "wrong", "worse"}, "right")
	createQuestion(t, f.db, f.quiz.ID, "What is a dict?", []string{"right", "wrong", "worse"}, "right")

	respondentService := NewRespondentService(f.db)
	available, err := respondentService.GetAvailableQuizzes(f.respondent.UserID)
	if err != nil {
		t.Fatalf("discovery failed: %v", err)
	}
	if len(available) != 1 || available[0].Name != "Basics" {
		t.Fatalf("expected Basics in discovery, got %+v", available)
	}

	state := f.answerAll(t, 2)
	if state.Score == nil || *state.Score != 100.0 {
		t.Fatalf("expected 100.0, got %v", state.Score)
	}

	// A second respondent answering one of two correctly scores 50.0.
	f.respondent = createRespondent(t, f.db, "carol", f.subject)
	state = f.answerAll(t, 1)
	if state.Score == nil || *state.Score != 50.0 {
		t.Fatalf("expected 50.0, got %v", state.Score)
	}
}

func TestTakeStateUnknownQuiz(t *testing.T) {
	f := newTakeFixture(t)
	_, err := f.service.GetTakeState(context.Background(), f.respondent.UserID, 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
