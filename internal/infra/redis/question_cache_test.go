package redis

import (
	"context"
	"testing"
	"time"

	"finlit-quiz-service/internal/domain"
	"finlit-quiz-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuestionCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		BankLoader: memory.NewStaticBankLoader(sampleBank()),
	}
	cache := NewQuestionCache(client, loader, time.Minute)

	bank, err := cache.Questions(context.Background())
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(bank) != 1 || bank[0].Answer != "Income and spending" {
		t.Fatalf("unexpected bank: %v", bank)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second call should hit the Redis blob, loader not incremented.
	if _, err := cache.Questions(context.Background()); err != nil {
		t.Fatalf("questions 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if !mr.Exists(bankKey) {
		t.Fatalf("expected bank blob in redis")
	}
}

type countingLoader struct {
	memory.BankLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.BankLoader.LoadBank(ctx)
}

func sampleBank() []domain.Question {
	return []domain.Question{
		{
			Prompt:  "What does a budget track?",
			Options: []string{"Income and spending", "Only spending"},
			Answer:  "Income and spending",
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
