package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"studysync/internal/app"
	"studysync/internal/domain"
)

// QuizCache is a read-through cache in front of the quiz catalog. Grading
// reads every submission's quiz, so definitions are cached as JSON under
// quiz:{id} with a jittered TTL; cache misses are collapsed per quiz ID via
// singleflight so a popular quiz does not stampede the backing store.
// Writes go straight through and seed the cache.
type QuizCache struct {
	client *redis.Client
	inner  app.QuizRepository
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizCache(client *redis.Client, inner app.QuizRepository, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		inner:  inner,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) Create(ctx context.Context, quiz domain.Quiz) error {
	if err := c.inner.Create(ctx, quiz); err != nil {
		return err
	}
	// Best-effort seed; a failed write just means a later cache miss.
	if data, err := json.Marshal(quiz); err == nil {
		_ = c.client.Set(ctx, c.key(quiz.ID), data, c.ttlWithJitter()).Err()
	}
	return nil
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := c.fromCache(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if quiz, ok := c.fromCache(ctx, quizID); ok {
			return quiz, nil
		}

		quiz, err := c.inner.GetQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		data, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("marshal quiz: %w", err)
		}
		_ = c.client.Set(ctx, c.key(quizID), data, c.ttlWithJitter()).Err()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// List always hits the backing store; filtered listings are not cached.
func (c *QuizCache) List(ctx context.Context, filter domain.QuizFilter) ([]domain.Quiz, error) {
	return c.inner.List(ctx, filter)
}

func (c *QuizCache) fromCache(ctx context.Context, quizID string) (domain.Quiz, bool) {
	data, err := c.client.Get(ctx, c.key(quizID)).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) key(quizID string) string {
	return "quiz:" + quizID
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
