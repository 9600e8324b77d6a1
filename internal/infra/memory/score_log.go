package memory

import (
	"context"
	"sync"

	"finlit-quiz-service/internal/domain"
)

// ScoreLog is an in-memory append-only leaderboard, mostly for tests and
// running without any persistence configured.
type ScoreLog struct {
	mu      sync.RWMutex
	records []domain.ScoreRecord
}

func NewScoreLog() *ScoreLog {
	return &ScoreLog{}
}

func (l *ScoreLog) Append(_ context.Context, record domain.ScoreRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

func (l *ScoreLog) LoadAll(_ context.Context) ([]domain.ScoreRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.ScoreRecord, len(l.records))
	copy(out, l.records)
	return out, nil
}
