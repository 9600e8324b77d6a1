package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"finlit-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// BankLoader fetches the validated question bank from a backing store.
type BankLoader interface {
	LoadBank(ctx context.Context) ([]domain.Question, error)
}

// QuestionCache caches the question bank with TTL to avoid repeated loads.
// The bank is effectively one-shot per process lifetime; the TTL only guards
// long-running servers against a stale bank file.
type QuestionCache struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	bank      []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(loader BankLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) Questions(ctx context.Context) ([]domain.Question, error) {
	now := c.clock()

	c.mu.RLock()
	if c.bank != nil && c.expiresAt.After(now) {
		bank := c.bank
		c.mu.RUnlock()
		return bank, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("bank", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.bank != nil && c.expiresAt.After(now) {
			bank := c.bank
			c.mu.RUnlock()
			return bank, nil
		}
		c.mu.RUnlock()

		bank, err := c.loader.LoadBank(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.bank = bank
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticBankLoader serves a fixed question set (useful for tests/demos).
type StaticBankLoader struct {
	bank []domain.Question
}

func NewStaticBankLoader(bank []domain.Question) *StaticBankLoader {
	return &StaticBankLoader{bank: bank}
}

func (l *StaticBankLoader) LoadBank(_ context.Context) ([]domain.Question, error) {
	if len(l.bank) == 0 {
		return nil, domain.ErrNoValidQuestions
	}
	return l.bank, nil
}
