package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"studysync/internal/domain"
)

// ForumService is the minimal forum surface the analytics read depends on.
type ForumService struct {
	forum ForumRepository
	now   func() time.Time
	newID func() string
}

func NewForumService(forum ForumRepository) *ForumService {
	return &ForumService{forum: forum, now: time.Now, newID: uuid.NewString}
}

// Ask posts a forum question.
func (s *ForumService) Ask(ctx context.Context, authorID, title, body string) (domain.ForumQuestion, error) {
	if title == "" {
		return domain.ForumQuestion{}, domain.Validationf("title", "must not be empty")
	}
	question := domain.ForumQuestion{
		ID:        s.newID(),
		Title:     title,
		Body:      body,
		AskedBy:   authorID,
		CreatedAt: s.now(),
	}
	if err := s.forum.Create(ctx, question); err != nil {
		return domain.ForumQuestion{}, err
	}
	return question, nil
}

// List returns all forum questions.
func (s *ForumService) List(ctx context.Context) ([]domain.ForumQuestion, error) {
	return s.forum.List(ctx)
}
