package app_test

import (
	"context"
	"errors"
	"testing"

	"studysync/internal/app"
	"studysync/internal/domain"
	"studysync/internal/infra/memory"
)

func TestQuizCreateRequiresTeacherOrAdmin(t *testing.T) {
	ctx := context.Background()
	service := app.NewQuizService(memory.NewQuizRepository(), nil)

	input := validQuizInput()
	if _, err := service.Create(ctx, domain.User{ID: "s1", Role: domain.RoleStudent}, input); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("student must not create quizzes, got %v", err)
	}
	if _, err := service.Create(ctx, domain.User{ID: "t1", Role: domain.RoleTeacher}, input); err != nil {
		t.Fatalf("teacher create: %v", err)
	}
	if _, err := service.Create(ctx, domain.User{ID: "a1", Role: domain.RoleAdmin}, input); err != nil {
		t.Fatalf("admin create: %v", err)
	}
}

func TestQuizCreateAssignsIDsAndCreator(t *testing.T) {
	ctx := context.Background()
	quizzes := memory.NewQuizRepository()
	service := app.NewQuizService(quizzes, nil)

	created, err := service.Create(ctx, domain.User{ID: "t1", Role: domain.RoleTeacher}, validQuizInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedBy != "t1" || created.CreatedAt.IsZero() {
		t.Fatalf("metadata not assigned: %+v", created)
	}
	for i, q := range created.Questions {
		if q.ID == "" {
			t.Fatalf("question %d has no id", i)
		}
	}

	stored, err := quizzes.GetQuiz(ctx, created.ID)
	if err != nil {
		t.Fatalf("created quiz must be readable: %v", err)
	}
	if stored.Title != created.Title {
		t.Fatalf("stored %q, created %q", stored.Title, created.Title)
	}
}

func TestQuizCreateValidation(t *testing.T) {
	ctx := context.Background()
	service := app.NewQuizService(memory.NewQuizRepository(), nil)
	teacher := domain.User{ID: "t1", Role: domain.RoleTeacher}

	cases := []struct {
		name   string
		mutate func(*app.QuizInput)
	}{
		{"empty title", func(in *app.QuizInput) { in.Title = "" }},
		{"no questions", func(in *app.QuizInput) { in.Questions = nil }},
		{"one option", func(in *app.QuizInput) { in.Questions[0].Options = []string{"only"} }},
		{"correct option out of range", func(in *app.QuizInput) { in.Questions[0].CorrectOption = 4 }},
		{"negative correct option", func(in *app.QuizInput) { in.Questions[0].CorrectOption = -1 }},
		{"zero max attempts", func(in *app.QuizInput) { z := 0; in.MaxAttempts = &z }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validQuizInput()
			tc.mutate(&input)
			if _, err := service.Create(ctx, teacher, input); !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestQuizCreateBroadcastsNotification(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	service := app.NewQuizService(memory.NewQuizRepository(), notifier)

	created, err := service.Create(ctx, domain.User{ID: "t1", Role: domain.RoleTeacher}, validQuizInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	n := notifier.sent[0]
	if n.Severity != domain.SeverityInfo || n.Message == "" {
		t.Fatalf("unexpected notification %+v", n)
	}
	_ = created
}

func TestQuizListFilters(t *testing.T) {
	ctx := context.Background()
	quizzes := memory.NewSeededQuizRepository(
		fiveQuestionQuiz("q1", "Maths", nil),
		fiveQuestionQuiz("q2", "Physics", nil),
	)
	service := app.NewQuizService(quizzes, nil)

	all, err := service.List(ctx, domain.QuizFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 quizzes, got %d (err %v)", len(all), err)
	}
	maths, err := service.List(ctx, domain.QuizFilter{Subject: "Maths"})
	if err != nil || len(maths) != 1 || maths[0].ID != "q1" {
		t.Fatalf("subject filter broken: %+v (err %v)", maths, err)
	}
}

func TestForumAsk(t *testing.T) {
	ctx := context.Background()
	forum := memory.NewForumRepository()
	service := app.NewForumService(forum)

	if _, err := service.Ask(ctx, "s1", "", "body"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for empty title, got %v", err)
	}

	asked, err := service.Ask(ctx, "s1", "Why does ice float?", "Density question")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if asked.ID == "" || asked.AskedBy != "s1" {
		t.Fatalf("metadata not assigned: %+v", asked)
	}

	count, err := forum.CountByAuthor(ctx, "s1")
	if err != nil || count != 1 {
		t.Fatalf("expected author count 1, got %d (err %v)", count, err)
	}
}

type recordingNotifier struct {
	sent []domain.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notification domain.Notification) {
	n.sent = append(n.sent, notification)
}

func validQuizInput() app.QuizInput {
	return app.QuizInput{
		Title:   "Fractions basics",
		Board:   "CBSE",
		Grade:   "6",
		Subject: "Maths",
		Chapter: "2",
		Topic:   "Fractions",
		Questions: []domain.Question{
			{Text: "1/2 + 1/4 = ?", Options: []string{"3/4", "1/6", "2/6", "1"}, CorrectOption: 0},
			{Text: "Which is larger?", Options: []string{"1/3", "1/2"}, CorrectOption: 1},
		},
		DurationMinutes: 15,
	}
}
