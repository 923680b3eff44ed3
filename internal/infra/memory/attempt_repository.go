package memory

import (
	"context"
	"sort"
	"sync"

	"studysync/internal/domain"
)

// AttemptRepository stores attempts in memory. The mutex makes the
// attempt-number uniqueness check effectively serial, mirroring the unique
// constraint the Postgres implementation relies on.
type AttemptRepository struct {
	mu       sync.RWMutex
	attempts []domain.Attempt
}

func NewAttemptRepository() *AttemptRepository {
	return &AttemptRepository{}
}

func (r *AttemptRepository) Create(_ context.Context, attempt domain.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attempts {
		if a.StudentID == attempt.StudentID && a.QuizID == attempt.QuizID && a.AttemptNumber == attempt.AttemptNumber {
			return domain.ErrDuplicateAttempt
		}
	}
	r.attempts = append(r.attempts, attempt)
	return nil
}

func (r *AttemptRepository) CountByStudentAndQuiz(_ context.Context, studentID, quizID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, a := range r.attempts {
		if a.StudentID == studentID && a.QuizID == quizID {
			n++
		}
	}
	return n, nil
}

func (r *AttemptRepository) ListByStudent(_ context.Context, studentID string) ([]domain.Attempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Attempt, 0)
	for _, a := range r.attempts {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}
