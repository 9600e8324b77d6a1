package postgres

import (
	"context"
	"fmt"

	"finlit-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ScoreStore is the Postgres-backed leaderboard log. Rows are insert-only;
// snapshots read every row in insertion order.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) Append(ctx context.Context, record domain.ScoreRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scores (username, country, avatar, category, score, total) VALUES ($1, $2, $3, $4, $5, $6)`,
		record.Username, record.Country, record.Avatar, record.Category, record.Score, record.Total,
	)
	if err != nil {
		return fmt.Errorf("%w: insert score: %v", domain.ErrStorage, err)
	}
	return nil
}

func (s *ScoreStore) LoadAll(ctx context.Context) ([]domain.ScoreRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT username, country, avatar, category, score, total FROM scores ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: select scores: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var records []domain.ScoreRecord
	for rows.Next() {
		var r domain.ScoreRecord
		if err := rows.Scan(&r.Username, &r.Country, &r.Avatar, &r.Category, &r.Score, &r.Total); err != nil {
			return nil, fmt.Errorf("%w: scan score: %v", domain.ErrStorage, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate scores: %v", domain.ErrStorage, err)
	}
	return records, nil
}
