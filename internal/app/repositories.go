package app

import (
	"context"
	"time"

	"studysync/internal/domain"
)

// UserRepository persists accounts (Postgres or in-memory).
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	UpdateProfile(ctx context.Context, user domain.User) error
	// AddXP applies a storage-side atomic increment so concurrent submissions
	// cannot lose updates. Implementations must treat missing or negative
	// stored XP as zero before adding.
	AddXP(ctx context.Context, id string, delta int) error
}

// QuizRepository is the quiz catalog's source of truth.
type QuizRepository interface {
	Create(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	List(ctx context.Context, filter domain.QuizFilter) ([]domain.Quiz, error)
}

// AttemptRepository persists immutable grading records.
type AttemptRepository interface {
	// Create must reject a second attempt carrying an already-used
	// (student, quiz, attemptNumber) triple with domain.ErrDuplicateAttempt;
	// that constraint closes the check-then-act race on attempt limits.
	Create(ctx context.Context, attempt domain.Attempt) error
	CountByStudentAndQuiz(ctx context.Context, studentID, quizID string) (int, error)
	// ListByStudent returns attempts ordered by completion time, newest first.
	ListByStudent(ctx context.Context, studentID string) ([]domain.Attempt, error)
}

// OTPStore holds at most one live code per email. Put upserts with a fresh
// TTL; Get must not return codes past their expiry.
type OTPStore interface {
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

// ForumRepository stores forum questions; analytics only needs the count.
type ForumRepository interface {
	Create(ctx context.Context, question domain.ForumQuestion) error
	List(ctx context.Context) ([]domain.ForumQuestion, error)
	CountByAuthor(ctx context.Context, userID string) (int, error)
}

// LeaderboardReader answers ranking queries over the user table. Rank counts
// users (students and admins) with strictly greater XP plus equal-XP users
// created earlier, plus one.
type LeaderboardReader interface {
	RankOf(ctx context.Context, xp int, createdAt time.Time) (int, error)
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// EmailSender dispatches outbound mail. OTP issuance treats a send failure
// as fatal: a code nobody received must not stay live.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Notifier fans out best-effort notifications; implementations must never
// return delivery problems to the triggering request.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}
