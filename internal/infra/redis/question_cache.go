package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"finlit-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// BankLoader fetches the validated question bank from a backing store.
type BankLoader interface {
	LoadBank(ctx context.Context) ([]domain.Question, error)
}

const bankKey = "finlit:quiz:bank"

// QuestionCache keeps the validated bank as a JSON blob in Redis and falls
// back to the loader on a miss, so multiple instances share one load.
type QuestionCache struct {
	client *redis.Client
	loader BankLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader BankLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) Questions(ctx context.Context) ([]domain.Question, error) {
	if bank, ok := c.cached(ctx); ok {
		return bank, nil
	}

	result, err, _ := c.sf.Do(bankKey, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if bank, ok := c.cached(ctx); ok {
			return bank, nil
		}

		bank, err := c.loader.LoadBank(ctx)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(bank); err == nil {
			// best-effort: a failed cache write only costs a reload
			_ = c.client.Set(ctx, bankKey, data, c.ttlWithJitter()).Err()
		}
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) cached(ctx context.Context) ([]domain.Question, bool) {
	data, err := c.client.Get(ctx, bankKey).Bytes()
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var bank []domain.Question
	if err := json.Unmarshal(data, &bank); err != nil || len(bank) == 0 {
		return nil, false
	}
	return bank, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
