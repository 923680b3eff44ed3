package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"studysync/internal/domain"
)

type quizRecord struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID              string          `bun:"id,pk"`
	Title           string          `bun:"title,notnull"`
	Description     string          `bun:"description"`
	Board           string          `bun:"board"`
	Grade           string          `bun:"grade"`
	Subject         string          `bun:"subject"`
	Chapter         string          `bun:"chapter"`
	Topic           string          `bun:"topic"`
	Questions       json.RawMessage `bun:"questions,type:jsonb,notnull"`
	DurationMinutes int             `bun:"duration_minutes"`
	MaxAttempts     *int            `bun:"max_attempts"`
	CreatedBy       string          `bun:"created_by,notnull"`
	CreatedAt       time.Time       `bun:"created_at,notnull"`
}

// QuizRepository stores quiz definitions with the question list as JSONB;
// questions are embedded in their quiz and never addressed independently.
type QuizRepository struct {
	db *bun.DB
}

func NewQuizRepository(db *bun.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) Create(ctx context.Context, quiz domain.Quiz) error {
	rec, err := toQuizRecord(quiz)
	if err != nil {
		return err
	}
	if _, err := r.db.NewInsert().Model(&rec).Exec(ctx); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var rec quizRecord
	err := r.db.NewSelect().Model(&rec).Where("q.id = ?", quizID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return fromQuizRecord(rec)
}

func (r *QuizRepository) List(ctx context.Context, filter domain.QuizFilter) ([]domain.Quiz, error) {
	var recs []quizRecord
	q := r.db.NewSelect().Model(&recs).Order("created_at DESC")
	if filter.Board != "" {
		q = q.Where("q.board = ?", filter.Board)
	}
	if filter.Grade != "" {
		q = q.Where("q.grade = ?", filter.Grade)
	}
	if filter.Subject != "" {
		q = q.Where("q.subject = ?", filter.Subject)
	}
	if filter.Chapter != "" {
		q = q.Where("q.chapter = ?", filter.Chapter)
	}
	if filter.Topic != "" {
		q = q.Where("q.topic = ?", filter.Topic)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	out := make([]domain.Quiz, 0, len(recs))
	for _, rec := range recs {
		quiz, err := fromQuizRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, quiz)
	}
	return out, nil
}

func toQuizRecord(quiz domain.Quiz) (quizRecord, error) {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return quizRecord{}, fmt.Errorf("marshal questions: %w", err)
	}
	return quizRecord{
		ID:              quiz.ID,
		Title:           quiz.Title,
		Description:     quiz.Description,
		Board:           quiz.Board,
		Grade:           quiz.Grade,
		Subject:         quiz.Subject,
		Chapter:         quiz.Chapter,
		Topic:           quiz.Topic,
		Questions:       questions,
		DurationMinutes: quiz.DurationMinutes,
		MaxAttempts:     quiz.MaxAttempts,
		CreatedBy:       quiz.CreatedBy,
		CreatedAt:       quiz.CreatedAt,
	}, nil
}

func fromQuizRecord(rec quizRecord) (domain.Quiz, error) {
	var questions []domain.Question
	if err := json.Unmarshal(rec.Questions, &questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	return domain.Quiz{
		ID:              rec.ID,
		Title:           rec.Title,
		Description:     rec.Description,
		Board:           rec.Board,
		Grade:           rec.Grade,
		Subject:         rec.Subject,
		Chapter:         rec.Chapter,
		Topic:           rec.Topic,
		Questions:       questions,
		DurationMinutes: rec.DurationMinutes,
		MaxAttempts:     rec.MaxAttempts,
		CreatedBy:       rec.CreatedBy,
		CreatedAt:       rec.CreatedAt,
	}, nil
}
