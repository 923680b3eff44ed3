package memory

import (
	"context"
	"sort"
	"sync"

	"studysync/internal/domain"
)

// QuizRepository is an in-memory quiz catalog.
type QuizRepository struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizRepository() *QuizRepository {
	return &QuizRepository{quizzes: make(map[string]domain.Quiz)}
}

// NewSeededQuizRepository pre-loads quizzes (demo mode and tests).
func NewSeededQuizRepository(quizzes ...domain.Quiz) *QuizRepository {
	r := NewQuizRepository()
	for _, q := range quizzes {
		r.quizzes[q.ID] = q
	}
	return r
}

func (r *QuizRepository) Create(_ context.Context, quiz domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes[quiz.ID] = quiz
	return nil
}

func (r *QuizRepository) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quiz, ok := r.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

// Delete removes a quiz. Attempts referencing it become orphans, which the
// analytics aggregation is required to tolerate.
func (r *QuizRepository) Delete(_ context.Context, quizID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.quizzes, quizID)
}

func (r *QuizRepository) List(_ context.Context, filter domain.QuizFilter) ([]domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(r.quizzes))
	for _, q := range r.quizzes {
		if matches(q, filter) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func matches(q domain.Quiz, f domain.QuizFilter) bool {
	if f.Board != "" && q.Board != f.Board {
		return false
	}
	if f.Grade != "" && q.Grade != f.Grade {
		return false
	}
	if f.Subject != "" && q.Subject != f.Subject {
		return false
	}
	if f.Chapter != "" && q.Chapter != f.Chapter {
		return false
	}
	if f.Topic != "" && q.Topic != f.Topic {
		return false
	}
	return true
}
