package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"studysync/internal/domain"
)

// QuizService manages the quiz catalog.
type QuizService struct {
	quizzes  QuizRepository
	notifier Notifier
	now      func() time.Time
	newID    func() string
}

func NewQuizService(quizzes QuizRepository, notifier Notifier) *QuizService {
	return &QuizService{
		quizzes:  quizzes,
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// QuizInput is the creation payload; IDs and timestamps are assigned here.
type QuizInput struct {
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Board           string            `json:"board"`
	Grade           string            `json:"grade"`
	Subject         string            `json:"subject"`
	Chapter         string            `json:"chapter"`
	Topic           string            `json:"topic"`
	Questions       []domain.Question `json:"questions"`
	DurationMinutes int               `json:"durationMinutes"`
	MaxAttempts     *int              `json:"maxAttempts"`
}

// Create validates and persists a quiz. Only teachers and admins may create;
// the new-quiz notification is fire-and-forget and never fails the request.
func (s *QuizService) Create(ctx context.Context, creator domain.User, in QuizInput) (domain.Quiz, error) {
	if creator.Role != domain.RoleTeacher && creator.Role != domain.RoleAdmin {
		return domain.Quiz{}, domain.ErrUnauthorized
	}
	if err := validateQuizInput(in); err != nil {
		return domain.Quiz{}, err
	}

	questions := make([]domain.Question, len(in.Questions))
	for i, q := range in.Questions {
		q.ID = s.newID()
		questions[i] = q
	}

	quiz := domain.Quiz{
		ID:              s.newID(),
		Title:           in.Title,
		Description:     in.Description,
		Board:           in.Board,
		Grade:           in.Grade,
		Subject:         in.Subject,
		Chapter:         in.Chapter,
		Topic:           in.Topic,
		Questions:       questions,
		DurationMinutes: in.DurationMinutes,
		MaxAttempts:     in.MaxAttempts,
		CreatedBy:       creator.ID,
		CreatedAt:       s.now(),
	}
	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, domain.Notification{
			Message:   fmt.Sprintf("New quiz available: %s (%s)", quiz.Title, quiz.Subject),
			Severity:  domain.SeverityInfo,
			CreatedAt: quiz.CreatedAt,
		})
	}
	return quiz, nil
}

// Get loads a quiz by ID.
func (s *QuizService) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

// List returns quizzes matching the taxonomy filter.
func (s *QuizService) List(ctx context.Context, filter domain.QuizFilter) ([]domain.Quiz, error) {
	return s.quizzes.List(ctx, filter)
}

func validateQuizInput(in QuizInput) error {
	if in.Title == "" {
		return domain.Validationf("title", "must not be empty")
	}
	if len(in.Questions) == 0 {
		return domain.Validationf("questions", "must contain at least one question")
	}
	for i, q := range in.Questions {
		if q.Text == "" {
			return domain.Validationf("questions", "question %d has no text", i)
		}
		if len(q.Options) < 2 {
			return domain.Validationf("questions", "question %d needs at least two options", i)
		}
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return domain.Validationf("questions", "question %d correctOption %d out of range", i, q.CorrectOption)
		}
	}
	if in.MaxAttempts != nil && *in.MaxAttempts < 1 {
		return domain.Validationf("maxAttempts", "must be at least 1 when set")
	}
	return nil
}
