package domain

import "time"

// Role controls what a user may do. Quizzes can only be created by teachers
// and admins; admins also take part in the XP ranking.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// User is an account plus its gamification state. XP only ever increases.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Grade        string    `json:"grade,omitempty"`
	Board        string    `json:"board,omitempty"`
	Subjects     []string  `json:"subjects,omitempty"`
	XP           int       `json:"xp"`
	Badges       []string  `json:"badges"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Question is an MCQ with a single correct option, addressed by index.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Quiz is an assessment definition. MaxAttempts nil means unlimited.
type Quiz struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Board           string     `json:"board"`
	Grade           string     `json:"grade"`
	Subject         string     `json:"subject"`
	Chapter         string     `json:"chapter"`
	Topic           string     `json:"topic"`
	Questions       []Question `json:"questions"`
	DurationMinutes int        `json:"durationMinutes,omitempty"`
	MaxAttempts     *int       `json:"maxAttempts,omitempty"`
	CreatedBy       string     `json:"createdBy"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// QuizFilter narrows catalog listings by taxonomy; empty fields match all.
type QuizFilter struct {
	Board   string
	Grade   string
	Subject string
	Chapter string
	Topic   string
}

// AnswerSubmission is one submitted answer, both fields zero-based indices.
type AnswerSubmission struct {
	QuestionIndex  int `json:"questionIndex"`
	SelectedOption int `json:"selectedOption"`
}

// AnswerResult is the graded outcome for a single submitted answer.
type AnswerResult struct {
	QuestionID     string `json:"questionId"`
	SelectedOption int    `json:"selectedOption"`
	IsCorrect      bool   `json:"isCorrect"`
}

// Attempt is an immutable grading record. TotalQuestions is the quiz's full
// question count, not the number of submitted answers.
type Attempt struct {
	ID             string         `json:"id"`
	StudentID      string         `json:"studentId"`
	QuizID         string         `json:"quizId"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Answers        []AnswerResult `json:"answers"`
	AttemptNumber  int            `json:"attemptNumber"`
	CompletedAt    time.Time      `json:"completedAt"`
}

// AttemptResult is what a submission returns to the caller.
type AttemptResult struct {
	Attempt  Attempt `json:"attempt"`
	XPGained int     `json:"xpGained"`
}

// SubjectAccuracy is per-subject aggregate accuracy in percent.
type SubjectAccuracy struct {
	Subject  string  `json:"subject"`
	Accuracy float64 `json:"accuracy"`
}

// Analytics is the dashboard aggregate for one user.
type Analytics struct {
	TotalQuizzes     int               `json:"totalQuizzes"`
	AverageAccuracy  float64           `json:"averageAccuracy"`
	SubjectAnalytics []SubjectAccuracy `json:"subjectAnalytics"`
	QuestionsAsked   int               `json:"questionsAsked"`
	XP               int               `json:"xp"`
	Rank             int               `json:"rank"`
	Improvement      float64           `json:"improvement"`
}

// LeaderboardEntry is the public projection of a ranked user.
type LeaderboardEntry struct {
	UserID string   `json:"userId"`
	Name   string   `json:"name"`
	XP     int      `json:"xp"`
	Badges []string `json:"badges"`
	Grade  string   `json:"grade,omitempty"`
	Board  string   `json:"board,omitempty"`
}

// ForumQuestion is a forum post; only authorship matters to analytics.
type ForumQuestion struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	AskedBy   string    `json:"askedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Severity levels for notifications.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// Notification is a best-effort message; empty UserID means broadcast.
type Notification struct {
	UserID    string    `json:"userId,omitempty"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
}
