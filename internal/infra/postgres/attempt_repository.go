package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"studysync/internal/domain"
)

type attemptRecord struct {
	bun.BaseModel `bun:"table:attempts,alias:a"`

	ID             string          `bun:"id,pk"`
	StudentID      string          `bun:"student_id,notnull"`
	QuizID         string          `bun:"quiz_id,notnull"`
	Score          int             `bun:"score,notnull"`
	TotalQuestions int             `bun:"total_questions,notnull"`
	Answers        json.RawMessage `bun:"answers,type:jsonb,notnull"`
	AttemptNumber  int             `bun:"attempt_number,notnull"`
	CompletedAt    time.Time       `bun:"completed_at,notnull"`
}

// AttemptRepository persists grading records. Rows are insert-only; the
// unique index on (student_id, quiz_id, attempt_number) is what stops two
// concurrent submissions from both slipping past the attempt-limit check.
type AttemptRepository struct {
	db *bun.DB
}

func NewAttemptRepository(db *bun.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt domain.Attempt) error {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	rec := attemptRecord{
		ID:             attempt.ID,
		StudentID:      attempt.StudentID,
		QuizID:         attempt.QuizID,
		Score:          attempt.Score,
		TotalQuestions: attempt.TotalQuestions,
		Answers:        answers,
		AttemptNumber:  attempt.AttemptNumber,
		CompletedAt:    attempt.CompletedAt,
	}
	if _, err := r.db.NewInsert().Model(&rec).Exec(ctx); err != nil {
		if uniqueViolation(err, "attempt_number") {
			return domain.ErrDuplicateAttempt
		}
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (r *AttemptRepository) CountByStudentAndQuiz(ctx context.Context, studentID, quizID string) (int, error) {
	n, err := r.db.NewSelect().
		Model((*attemptRecord)(nil)).
		Where("student_id = ?", studentID).
		Where("quiz_id = ?", quizID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

func (r *AttemptRepository) ListByStudent(ctx context.Context, studentID string) ([]domain.Attempt, error) {
	var recs []attemptRecord
	err := r.db.NewSelect().
		Model(&recs).
		Where("student_id = ?", studentID).
		Order("completed_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make([]domain.Attempt, 0, len(recs))
	for _, rec := range recs {
		var answers []domain.AnswerResult
		if err := json.Unmarshal(rec.Answers, &answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		out = append(out, domain.Attempt{
			ID:             rec.ID,
			StudentID:      rec.StudentID,
			QuizID:         rec.QuizID,
			Score:          rec.Score,
			TotalQuestions: rec.TotalQuestions,
			Answers:        answers,
			AttemptNumber:  rec.AttemptNumber,
			CompletedAt:    rec.CompletedAt,
		})
	}
	return out, nil
}
