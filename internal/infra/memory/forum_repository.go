package memory

import (
	"context"
	"sort"
	"sync"

	"studysync/internal/domain"
)

// ForumRepository stores forum questions in memory.
type ForumRepository struct {
	mu        sync.RWMutex
	questions []domain.ForumQuestion
}

func NewForumRepository() *ForumRepository {
	return &ForumRepository{}
}

func (r *ForumRepository) Create(_ context.Context, question domain.ForumQuestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions = append(r.questions, question)
	return nil
}

func (r *ForumRepository) List(_ context.Context) ([]domain.ForumQuestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ForumQuestion, len(r.questions))
	copy(out, r.questions)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ForumRepository) CountByAuthor(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, q := range r.questions {
		if q.AskedBy == userID {
			n++
		}
	}
	return n, nil
}
