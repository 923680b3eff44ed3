package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"studysync/internal/app"
	"studysync/internal/domain"
)

// QuizHandler exposes the catalog and attempt submission.
type QuizHandler struct {
	quizzes  *app.QuizService
	attempts *app.AttemptService
	accounts *app.AccountService
}

func NewQuizHandler(quizzes *app.QuizService, attempts *app.AttemptService, accounts *app.AccountService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, attempts: attempts, accounts: accounts}
}

func (h *QuizHandler) create(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Message: "not authenticated"})
		return
	}
	creator, err := h.accounts.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	var req app.QuizInput
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	quiz, err := h.quizzes.Create(r.Context(), creator, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.QuizFilter{
		Board:   q.Get("board"),
		Grade:   q.Get("grade"),
		Subject: q.Get("subject"),
		Chapter: q.Get("chapter"),
		Topic:   q.Get("topic"),
	}
	quizzes, err := h.quizzes.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]quizView, 0, len(quizzes))
	for _, quiz := range quizzes {
		views = append(views, newQuizView(quiz, false))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *QuizHandler) get(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)
	quiz, err := h.quizzes.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	// Students taking a quiz must not see the answer key.
	withAnswers := claims.Role == domain.RoleTeacher || claims.Role == domain.RoleAdmin
	writeJSON(w, http.StatusOK, newQuizView(quiz, withAnswers))
}

type submitAttemptRequest struct {
	Answers []domain.AnswerSubmission `json:"answers"`
}

func (h *QuizHandler) submitAttempt(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Message: "not authenticated"})
		return
	}
	var req submitAttemptRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.attempts.Submit(r.Context(), claims.UserID, mux.Vars(r)["id"], req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, attemptResponse{
		AttemptID:      result.Attempt.ID,
		Score:          result.Attempt.Score,
		TotalQuestions: result.Attempt.TotalQuestions,
		XPGained:       result.XPGained,
		Answers:        result.Attempt.Answers,
	})
}

func (h *QuizHandler) history(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Message: "not authenticated"})
		return
	}
	attempts, err := h.attempts.History(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

// attemptResponse is the typed projection of a graded submission.
type attemptResponse struct {
	AttemptID      string                `json:"attemptId"`
	Score          int                   `json:"score"`
	TotalQuestions int                   `json:"totalQuestions"`
	XPGained       int                   `json:"xpGained"`
	Answers        []domain.AnswerResult `json:"answers"`
}

// quizView projects a quiz for clients; the answer key and explanations are
// stripped unless the caller is allowed to see them.
type quizView struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	Board           string         `json:"board"`
	Grade           string         `json:"grade"`
	Subject         string         `json:"subject"`
	Chapter         string         `json:"chapter"`
	Topic           string         `json:"topic"`
	Questions       []questionView `json:"questions"`
	DurationMinutes int            `json:"durationMinutes,omitempty"`
	MaxAttempts     *int           `json:"maxAttempts,omitempty"`
}

type questionView struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption *int     `json:"correctOption,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

func newQuizView(quiz domain.Quiz, withAnswers bool) quizView {
	questions := make([]questionView, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		view := questionView{ID: q.ID, Text: q.Text, Options: q.Options}
		if withAnswers {
			correct := q.CorrectOption
			view.CorrectOption = &correct
			view.Explanation = q.Explanation
		}
		questions = append(questions, view)
	}
	return quizView{
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
	}
}
