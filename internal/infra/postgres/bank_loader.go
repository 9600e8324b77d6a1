package postgres

import (
	"context"
	"fmt"
	"log"

	"finlit-quiz-service/internal/bank"
	"finlit-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// BankLoader loads the raw question records from a JSONB column and runs them
// through the same validation as the file loader.
type BankLoader struct {
	pool   *pgxpool.Pool
	bankID string
}

func NewBankLoader(pool *pgxpool.Pool, bankID string) *BankLoader {
	if bankID == "" {
		bankID = "default"
	}
	return &BankLoader{pool: pool, bankID: bankID}
}

func (l *BankLoader) LoadBank(ctx context.Context) ([]domain.Question, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_banks WHERE id=$1`, l.bankID).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("load question bank %q: %w", l.bankID, err)
	}
	questions, rejected, err := bank.Parse(raw)
	for _, r := range rejected {
		log.Printf("question bank %q: skipping %s", l.bankID, r)
	}
	if err != nil {
		return nil, err
	}
	return questions, nil
}
