package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"studysync/internal/domain"
)

type forumQuestionRecord struct {
	bun.BaseModel `bun:"table:forum_questions,alias:fq"`

	ID        string    `bun:"id,pk"`
	Title     string    `bun:"title,notnull"`
	Body      string    `bun:"body"`
	AskedBy   string    `bun:"asked_by,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// ForumRepository stores forum questions.
type ForumRepository struct {
	db *bun.DB
}

func NewForumRepository(db *bun.DB) *ForumRepository {
	return &ForumRepository{db: db}
}

func (r *ForumRepository) Create(ctx context.Context, question domain.ForumQuestion) error {
	rec := forumQuestionRecord{
		ID:        question.ID,
		Title:     question.Title,
		Body:      question.Body,
		AskedBy:   question.AskedBy,
		CreatedAt: question.CreatedAt,
	}
	if _, err := r.db.NewInsert().Model(&rec).Exec(ctx); err != nil {
		return fmt.Errorf("insert forum question: %w", err)
	}
	return nil
}

func (r *ForumRepository) List(ctx context.Context) ([]domain.ForumQuestion, error) {
	var recs []forumQuestionRecord
	if err := r.db.NewSelect().Model(&recs).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list forum questions: %w", err)
	}
	out := make([]domain.ForumQuestion, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.ForumQuestion{
			ID:        rec.ID,
			Title:     rec.Title,
			Body:      rec.Body,
			AskedBy:   rec.AskedBy,
			CreatedAt: rec.CreatedAt,
		})
	}
	return out, nil
}

func (r *ForumRepository) CountByAuthor(ctx context.Context, userID string) (int, error) {
	n, err := r.db.NewSelect().
		Model((*forumQuestionRecord)(nil)).
		Where("asked_by = ?", userID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count forum questions: %w", err)
	}
	return n, nil
}
