package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"studysync/internal/domain"
)

// XP awarded per correct answer. Flat rate, no difficulty weighting.
const xpPerCorrectAnswer = 10

// AttemptService grades submissions, persists attempts, and awards XP.
type AttemptService struct {
	quizzes  QuizRepository
	attempts AttemptRepository
	users    UserRepository
	now      func() time.Time
	newID    func() string
}

func NewAttemptService(quizzes QuizRepository, attempts AttemptRepository, users UserRepository) *AttemptService {
	return &AttemptService{
		quizzes:  quizzes,
		attempts: attempts,
		users:    users,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// NewAttemptServiceWithClock is test-only for deterministic timestamps.
func NewAttemptServiceWithClock(quizzes QuizRepository, attempts AttemptRepository, users UserRepository, now func() time.Time) *AttemptService {
	s := NewAttemptService(quizzes, attempts, users)
	s.now = now
	return s
}

// Submit grades answers against the quiz, persists one immutable attempt,
// and adds score*10 XP to the student via an atomic increment.
//
// The attempt-limit check runs before grading so the limit stays
// authoritative and a capped submission does no wasted work. The assigned
// attempt number is additionally guarded by a uniqueness constraint at the
// storage layer, so two concurrent submissions racing past the count check
// cannot both land.
func (s *AttemptService) Submit(ctx context.Context, studentID, quizID string, answers []domain.AnswerSubmission) (domain.AttemptResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.AttemptResult{}, err
	}

	prior, err := s.attempts.CountByStudentAndQuiz(ctx, studentID, quizID)
	if err != nil {
		return domain.AttemptResult{}, err
	}
	if quiz.MaxAttempts != nil && prior >= *quiz.MaxAttempts {
		return domain.AttemptResult{}, domain.ErrAttemptLimitExceeded
	}

	results, score, err := gradeAnswers(quiz, answers)
	if err != nil {
		return domain.AttemptResult{}, err
	}

	attempt := domain.Attempt{
		ID:             s.newID(),
		StudentID:      studentID,
		QuizID:         quizID,
		Score:          score,
		TotalQuestions: len(quiz.Questions),
		Answers:        results,
		AttemptNumber:  prior + 1,
		CompletedAt:    s.now(),
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return domain.AttemptResult{}, err
	}

	// Non-transactional stores leave a window where the attempt exists but
	// the XP update failed; the attempt record is the source of truth and
	// the error is surfaced rather than hidden.
	xpGained := score * xpPerCorrectAnswer
	if xpGained > 0 {
		if err := s.users.AddXP(ctx, studentID, xpGained); err != nil {
			return domain.AttemptResult{}, err
		}
	}

	return domain.AttemptResult{Attempt: attempt, XPGained: xpGained}, nil
}

// History returns the student's attempts, newest first.
func (s *AttemptService) History(ctx context.Context, studentID string) ([]domain.Attempt, error) {
	return s.attempts.ListByStudent(ctx, studentID)
}

// gradeAnswers scores a submission. An answer is correct iff its selected
// option equals the question's correct option; there is no partial credit.
// Out-of-range question indices fail closed as a validation error, and only
// the first answer per question counts.
func gradeAnswers(quiz domain.Quiz, answers []domain.AnswerSubmission) ([]domain.AnswerResult, int, error) {
	results := make([]domain.AnswerResult, 0, len(answers))
	seen := make(map[int]bool, len(answers))
	score := 0

	for _, ans := range answers {
		if ans.QuestionIndex < 0 || ans.QuestionIndex >= len(quiz.Questions) {
			return nil, 0, domain.Validationf("questionIndex", "%d out of range for %d questions", ans.QuestionIndex, len(quiz.Questions))
		}
		if seen[ans.QuestionIndex] {
			continue
		}
		seen[ans.QuestionIndex] = true

		question := quiz.Questions[ans.QuestionIndex]
		correct := ans.SelectedOption == question.CorrectOption
		if correct {
			score++
		}
		results = append(results, domain.AnswerResult{
			QuestionID:     question.ID,
			SelectedOption: ans.SelectedOption,
			IsCorrect:      correct,
		})
	}
	return results, score, nil
}
