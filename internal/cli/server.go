package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"studysync/internal/app"
	"studysync/internal/auth"
	"studysync/internal/config"
	"studysync/internal/infra/email"
	"studysync/internal/infra/memory"
	"studysync/internal/infra/postgres"
	infraredis "studysync/internal/infra/redis"
	transport "studysync/internal/transport/http"
)

var errMissingJWTSecret = errors.New("jwt secret not configured (set jwt.secret or JWT_SECRET)")

// NewServeCmd builds the CLI subcommand to start the API server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the StudySync API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var (
		users       app.UserRepository
		quizzes     app.QuizRepository
		attempts    app.AttemptRepository
		forum       app.ForumRepository
		leaderboard app.LeaderboardReader
	)
	if cfg.Postgres.URL != "" {
		db := postgres.Open(cfg.Postgres.URL)
		defer db.Close()

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		users = postgres.NewUserRepository(db)
		quizzes = postgres.NewQuizRepository(db)
		attempts = postgres.NewAttemptRepository(db)
		forum = postgres.NewForumRepository(db)
		leaderboard = postgres.NewLeaderboardReader(pool)
	} else {
		log.Printf("no postgres configured, running in-memory (data is lost on restart)")
		memUsers := memory.NewUserRepository()
		users = memUsers
		quizzes = memory.NewQuizRepository()
		attempts = memory.NewAttemptRepository()
		forum = memory.NewForumRepository()
		leaderboard = memUsers
	}

	if redisClient != nil {
		quizTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
		quizzes = infraredis.NewQuizCache(redisClient, quizzes, quizTTL)
	}

	var otps app.OTPStore
	if redisClient != nil {
		otps = infraredis.NewOTPStore(redisClient)
	} else {
		otps = memory.NewOTPStore()
	}

	var sender app.EmailSender
	if cfg.SMTP.Host != "" {
		sender = email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		log.Printf("no smtp configured, OTP emails go to the log")
		sender = email.NewLogSender()
	}

	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		return errMissingJWTSecret
	}
	tokens := auth.NewManager(jwtSecret, config.TTLDuration(cfg.JWT.TTL, 30*24*time.Hour))
	hub := transport.NewNotificationHub(tokens)

	otpTTL := config.TTLDuration(cfg.OTP.TTL, app.DefaultOTPTTL)
	services := transport.Services{
		Accounts:  app.NewAccountService(users, otps, sender, tokens, otpTTL),
		Quizzes:   app.NewQuizService(quizzes, hub),
		Attempts:  app.NewAttemptService(quizzes, attempts, users),
		Analytics: app.NewAnalyticsService(attempts, quizzes, users, forum, leaderboard),
		Forum:     app.NewForumService(forum),
		Tokens:    tokens,
		Hub:       hub,
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(services),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting studysync api on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
