package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"studysync/internal/app"
	"studysync/internal/domain"
	"studysync/internal/infra/memory"
)

func TestSubmitGradesAndAwardsXP(t *testing.T) {
	ctx := context.Background()
	users, quizzes, attempts, service := newAttemptFixture(t)

	// Five questions, correct options [1,1,1,3,2]; four answered correctly.
	answers := []domain.AnswerSubmission{
		{QuestionIndex: 0, SelectedOption: 1},
		{QuestionIndex: 1, SelectedOption: 0},
		{QuestionIndex: 2, SelectedOption: 1},
		{QuestionIndex: 3, SelectedOption: 3},
		{QuestionIndex: 4, SelectedOption: 2},
	}
	result, err := service.Submit(ctx, "student-1", "quiz-1", answers)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Attempt.Score != 4 {
		t.Fatalf("expected score 4, got %d", result.Attempt.Score)
	}
	if result.XPGained != 40 {
		t.Fatalf("expected 40 XP, got %d", result.XPGained)
	}
	if result.Attempt.TotalQuestions != 5 {
		t.Fatalf("expected totalQuestions 5, got %d", result.Attempt.TotalQuestions)
	}

	user, err := users.GetByID(ctx, "student-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.XP != 40 {
		t.Fatalf("expected user xp 40, got %d", user.XP)
	}

	stored, err := attempts.ListByStudent(ctx, "student-1")
	if err != nil || len(stored) != 1 {
		t.Fatalf("expected 1 stored attempt, got %d (err %v)", len(stored), err)
	}
	_ = quizzes
}

func TestSubmitPartialAnswersCountFullDenominator(t *testing.T) {
	ctx := context.Background()
	_, _, _, service := newAttemptFixture(t)

	// Only two of five questions answered; the rest count as wrong.
	result, err := service.Submit(ctx, "student-1", "quiz-1", []domain.AnswerSubmission{
		{QuestionIndex: 0, SelectedOption: 1},
		{QuestionIndex: 4, SelectedOption: 2},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Attempt.Score != 2 || result.Attempt.TotalQuestions != 5 {
		t.Fatalf("expected 2/5, got %d/%d", result.Attempt.Score, result.Attempt.TotalQuestions)
	}
	if len(result.Attempt.Answers) != 2 {
		t.Fatalf("expected 2 answer records, got %d", len(result.Attempt.Answers))
	}
}

func TestSubmitDuplicateAnswersGradedOnce(t *testing.T) {
	ctx := context.Background()
	_, _, _, service := newAttemptFixture(t)

	result, err := service.Submit(ctx, "student-1", "quiz-1", []domain.AnswerSubmission{
		{QuestionIndex: 0, SelectedOption: 1},
		{QuestionIndex: 0, SelectedOption: 1},
		{QuestionIndex: 0, SelectedOption: 0},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Attempt.Score != 1 {
		t.Fatalf("expected duplicate answers to count once, got score %d", result.Attempt.Score)
	}
}

func TestSubmitRejectsOutOfRangeQuestionIndex(t *testing.T) {
	ctx := context.Background()
	_, _, attempts, service := newAttemptFixture(t)

	_, err := service.Submit(ctx, "student-1", "quiz-1", []domain.AnswerSubmission{
		{QuestionIndex: 9, SelectedOption: 0},
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	stored, _ := attempts.ListByStudent(ctx, "student-1")
	if len(stored) != 0 {
		t.Fatalf("rejected submission must not persist an attempt, got %d", len(stored))
	}
}

func TestSubmitUnknownQuiz(t *testing.T) {
	ctx := context.Background()
	_, _, _, service := newAttemptFixture(t)

	_, err := service.Submit(ctx, "student-1", "quiz-missing", nil)
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestSubmitEnforcesAttemptLimit(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	seedStudent(t, users, "student-1", 0)

	one := 1
	quizzes := memory.NewSeededQuizRepository(fiveQuestionQuiz("quiz-1", "Maths", &one))
	attempts := memory.NewAttemptRepository()
	service := app.NewAttemptService(quizzes, attempts, users)

	if _, err := service.Submit(ctx, "student-1", "quiz-1", nil); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := service.Submit(ctx, "student-1", "quiz-1", nil)
	if !errors.Is(err, domain.ErrAttemptLimitExceeded) {
		t.Fatalf("expected attempt limit error, got %v", err)
	}
}

func TestSubmitXPAccumulatesAcrossAttempts(t *testing.T) {
	ctx := context.Background()
	users, _, _, service := newAttemptFixture(t)

	correct := []domain.AnswerSubmission{
		{QuestionIndex: 0, SelectedOption: 1},
		{QuestionIndex: 1, SelectedOption: 1},
		{QuestionIndex: 2, SelectedOption: 1},
	}
	if _, err := service.Submit(ctx, "student-1", "quiz-1", correct); err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	if _, err := service.Submit(ctx, "student-1", "quiz-1", correct[:1]); err != nil {
		t.Fatalf("submit 2: %v", err)
	}

	user, _ := users.GetByID(ctx, "student-1")
	if user.XP != 40 {
		t.Fatalf("expected accumulated xp 40, got %d", user.XP)
	}
}

func TestSubmitRepairsNegativeXP(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	// Corrupt legacy state: negative XP must be reset to zero before adding.
	seedStudent(t, users, "student-1", -50)

	quizzes := memory.NewSeededQuizRepository(fiveQuestionQuiz("quiz-1", "Maths", nil))
	service := app.NewAttemptService(quizzes, memory.NewAttemptRepository(), users)

	_, err := service.Submit(ctx, "student-1", "quiz-1", []domain.AnswerSubmission{
		{QuestionIndex: 0, SelectedOption: 1},
		{QuestionIndex: 1, SelectedOption: 1},
		{QuestionIndex: 2, SelectedOption: 1},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	user, _ := users.GetByID(ctx, "student-1")
	if user.XP != 30 {
		t.Fatalf("expected xp 30 after zero-init repair, got %d", user.XP)
	}
}

func newAttemptFixture(t *testing.T) (*memory.UserRepository, *memory.QuizRepository, *memory.AttemptRepository, *app.AttemptService) {
	t.Helper()
	users := memory.NewUserRepository()
	seedStudent(t, users, "student-1", 0)
	quizzes := memory.NewSeededQuizRepository(fiveQuestionQuiz("quiz-1", "Maths", nil))
	attempts := memory.NewAttemptRepository()
	return users, quizzes, attempts, app.NewAttemptService(quizzes, attempts, users)
}

func seedStudent(t *testing.T, users *memory.UserRepository, id string, xp int) {
	t.Helper()
	err := users.Create(context.Background(), domain.User{
		ID:        id,
		Name:      "Student " + id,
		Email:     id + "@example.com",
		Username:  id,
		Role:      domain.RoleStudent,
		XP:        xp,
		Verified:  true,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func fiveQuestionQuiz(id, subject string, maxAttempts *int) domain.Quiz {
	options := []string{"a", "b", "c", "d"}
	correct := []int{1, 1, 1, 3, 2}
	questions := make([]domain.Question, len(correct))
	for i, c := range correct {
		questions[i] = domain.Question{
			ID:            id + "-q" + string(rune('1'+i)),
			Text:          "Question",
			Options:       options,
			CorrectOption: c,
		}
	}
	return domain.Quiz{
		ID:          id,
		Title:       "Sample quiz",
		Board:       "CBSE",
		Grade:       "10",
		Subject:     subject,
		Chapter:     "1",
		Topic:       "Basics",
		Questions:   questions,
		MaxAttempts: maxAttempts,
		CreatedBy:   "teacher-1",
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}
