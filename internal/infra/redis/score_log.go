package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"finlit-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const scoresKey = "finlit:quiz:scores"

// ScoreLog keeps the leaderboard as a Redis list of JSON records. RPUSH gives
// the append-only log contract; reads are always a full-snapshot LRANGE.
type ScoreLog struct {
	client *redis.Client
}

func NewScoreLog(client *redis.Client) *ScoreLog {
	return &ScoreLog{client: client}
}

func (l *ScoreLog) Append(ctx context.Context, record domain.ScoreRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: encode record: %v", domain.ErrStorage, err)
	}
	if err := l.client.RPush(ctx, scoresKey, data).Err(); err != nil {
		return fmt.Errorf("%w: rpush: %v", domain.ErrStorage, err)
	}
	return nil
}

func (l *ScoreLog) LoadAll(ctx context.Context) ([]domain.ScoreRecord, error) {
	raw, err := l.client.LRange(ctx, scoresKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: lrange: %v", domain.ErrStorage, err)
	}
	records := make([]domain.ScoreRecord, 0, len(raw))
	for _, item := range raw {
		var record domain.ScoreRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			// a corrupt entry is skipped rather than poisoning the snapshot
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
