package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"studysync/internal/app"
	"studysync/internal/auth"
)

// Services bundles everything the API needs.
type Services struct {
	Accounts  *app.AccountService
	Quizzes   *app.QuizService
	Attempts  *app.AttemptService
	Analytics *app.AnalyticsService
	Forum     *app.ForumService
	Tokens    *auth.Manager
	Hub       *NotificationHub
}

// NewRouter wires all REST routes and the notification websocket.
func NewRouter(s Services) *mux.Router {
	authH := NewAuthHandler(s.Accounts)
	quizH := NewQuizHandler(s.Quizzes, s.Attempts, s.Accounts)
	analyticsH := NewAnalyticsHandler(s.Analytics)
	forumH := NewForumHandler(s.Forum)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Signup flow and login are the only unauthenticated endpoints.
	api.HandleFunc("/auth/otp", authH.sendOTP).Methods(http.MethodPost)
	api.HandleFunc("/auth/otp/verify", authH.verifyOTP).Methods(http.MethodPost)
	api.HandleFunc("/auth/otp/resend", authH.resendOTP).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", authH.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authH.login).Methods(http.MethodPost)

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return requireAuth(s.Tokens, next)
	}
	api.HandleFunc("/auth/me", authed(authH.me)).Methods(http.MethodGet)
	api.HandleFunc("/auth/profile", authed(authH.updateProfile)).Methods(http.MethodPut)

	api.HandleFunc("/quizzes", authed(quizH.create)).Methods(http.MethodPost)
	api.HandleFunc("/quizzes", authed(quizH.list)).Methods(http.MethodGet)
	api.HandleFunc("/quizzes/{id}", authed(quizH.get)).Methods(http.MethodGet)
	api.HandleFunc("/quizzes/{id}/attempts", authed(quizH.submitAttempt)).Methods(http.MethodPost)
	api.HandleFunc("/attempts", authed(quizH.history)).Methods(http.MethodGet)

	api.HandleFunc("/analytics", authed(analyticsH.get)).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", authed(analyticsH.leaderboard)).Methods(http.MethodGet)

	api.HandleFunc("/forum/questions", authed(forumH.ask)).Methods(http.MethodPost)
	api.HandleFunc("/forum/questions", authed(forumH.list)).Methods(http.MethodGet)

	if s.Hub != nil {
		api.HandleFunc("/notifications/ws", s.Hub.ServeWS)
	}

	return r
}
