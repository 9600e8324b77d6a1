package file

import (
	"context"
	"fmt"
	"log"
	"os"

	"finlit-quiz-service/internal/bank"
	"finlit-quiz-service/internal/domain"
)

// BankLoader reads the question bank from a JSON file on disk.
type BankLoader struct {
	path string
}

func NewBankLoader(path string) *BankLoader {
	return &BankLoader{path: path}
}

func (l *BankLoader) LoadBank(_ context.Context) ([]domain.Question, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read question bank %s: %w", l.path, err)
	}
	questions, rejected, err := bank.Parse(data)
	for _, r := range rejected {
		log.Printf("question bank %s: skipping %s", l.path, r)
	}
	if err != nil {
		return nil, err
	}
	return questions, nil
}
