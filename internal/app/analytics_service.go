package app

import (
	"context"
	"errors"
	"sort"

	"studysync/internal/domain"
)

// recentWindow is how many of the latest attempts form the "recent" slice of
// the improvement metric.
const recentWindow = 5

// AnalyticsService derives dashboard aggregates from attempt history, user
// XP, and forum activity. All reads, no writes; callers may retry freely.
type AnalyticsService struct {
	attempts    AttemptRepository
	quizzes     QuizRepository
	users       UserRepository
	forum       ForumRepository
	leaderboard LeaderboardReader
}

func NewAnalyticsService(attempts AttemptRepository, quizzes QuizRepository, users UserRepository, forum ForumRepository, leaderboard LeaderboardReader) *AnalyticsService {
	return &AnalyticsService{
		attempts:    attempts,
		quizzes:     quizzes,
		users:       users,
		forum:       forum,
		leaderboard: leaderboard,
	}
}

// GetAnalytics computes the full dashboard for one user.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, userID string) (domain.Analytics, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.Analytics{}, err
	}

	attempts, err := s.attempts.ListByStudent(ctx, userID)
	if err != nil {
		return domain.Analytics{}, err
	}
	// Newest first regardless of repository ordering; improvement depends on it.
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].CompletedAt.After(attempts[j].CompletedAt)
	})

	totalScore, totalPossible := 0, 0
	for _, a := range attempts {
		totalScore += a.Score
		totalPossible += a.TotalQuestions
	}
	averageAccuracy := 0.0
	if totalPossible > 0 {
		averageAccuracy = float64(totalScore) / float64(totalPossible) * 100
	}

	subjects, err := s.subjectAnalytics(ctx, attempts)
	if err != nil {
		return domain.Analytics{}, err
	}

	questionsAsked, err := s.forum.CountByAuthor(ctx, userID)
	if err != nil {
		return domain.Analytics{}, err
	}

	rank, err := s.leaderboard.RankOf(ctx, user.XP, user.CreatedAt)
	if err != nil {
		return domain.Analytics{}, err
	}

	return domain.Analytics{
		TotalQuizzes:     len(attempts),
		AverageAccuracy:  averageAccuracy,
		SubjectAnalytics: subjects,
		QuestionsAsked:   questionsAsked,
		XP:               user.XP,
		Rank:             rank,
		Improvement:      improvement(attempts),
	}, nil
}

// GetLeaderboard returns the top users by XP, older accounts winning ties.
func (s *AnalyticsService) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.leaderboard.Top(ctx, limit)
}

// subjectAnalytics groups attempts by their quiz's subject. Attempts whose
// quiz has since been deleted are skipped; orphaned references must not
// break the aggregate. Subjects keep first-seen order for stable output.
func (s *AnalyticsService) subjectAnalytics(ctx context.Context, attempts []domain.Attempt) ([]domain.SubjectAccuracy, error) {
	type tally struct {
		score int
		total int
	}
	order := make([]string, 0)
	bySubject := make(map[string]*tally)
	quizCache := make(map[string]*domain.Quiz, len(attempts))

	for _, a := range attempts {
		quiz, ok := quizCache[a.QuizID]
		if !ok {
			loaded, err := s.quizzes.GetQuiz(ctx, a.QuizID)
			switch {
			case errors.Is(err, domain.ErrQuizNotFound):
				quizCache[a.QuizID] = nil
			case err != nil:
				return nil, err
			default:
				quizCache[a.QuizID] = &loaded
			}
			quiz = quizCache[a.QuizID]
		}
		if quiz == nil {
			continue
		}

		t, ok := bySubject[quiz.Subject]
		if !ok {
			t = &tally{}
			bySubject[quiz.Subject] = t
			order = append(order, quiz.Subject)
		}
		t.score += a.Score
		t.total += a.TotalQuestions
	}

	out := make([]domain.SubjectAccuracy, 0, len(order))
	for _, subject := range order {
		t := bySubject[subject]
		accuracy := 0.0
		if t.total > 0 {
			accuracy = float64(t.score) / float64(t.total) * 100
		}
		out = append(out, domain.SubjectAccuracy{Subject: subject, Accuracy: accuracy})
	}
	return out, nil
}

// improvement compares the mean percentage of the most recent attempts
// (up to recentWindow) against the mean of everything older. With no older
// attempts the recent mean itself is reported, an improvement over a zero
// baseline; with fewer than two attempts total there is no trend at all.
func improvement(newestFirst []domain.Attempt) float64 {
	if len(newestFirst) < 2 {
		return 0
	}
	split := recentWindow
	if split > len(newestFirst) {
		split = len(newestFirst)
	}
	recent := meanPercentage(newestFirst[:split])
	if split == len(newestFirst) {
		return recent
	}
	return recent - meanPercentage(newestFirst[split:])
}

func meanPercentage(attempts []domain.Attempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range attempts {
		if a.TotalQuestions > 0 {
			sum += float64(a.Score) / float64(a.TotalQuestions) * 100
		}
	}
	return sum / float64(len(attempts))
}
