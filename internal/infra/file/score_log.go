package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"finlit-quiz-service/internal/domain"
)

// ScoreLog persists score records as a JSON array file, append-only. Writes
// are serialized by a process-local mutex; records are never updated in place.
type ScoreLog struct {
	path string
	mu   sync.Mutex
}

func NewScoreLog(path string) *ScoreLog {
	return &ScoreLog{path: path}
}

func (l *ScoreLog) Append(_ context.Context, record domain.ScoreRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.read()
	if err != nil {
		return err
	}
	records = append(records, record)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode scores: %v", domain.ErrStorage, err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("%w: create scores dir: %v", domain.ErrStorage, err)
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write scores: %v", domain.ErrStorage, err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("%w: replace scores: %v", domain.ErrStorage, err)
	}
	return nil
}

func (l *ScoreLog) LoadAll(_ context.Context) ([]domain.ScoreRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

func (l *ScoreLog) read() ([]domain.ScoreRecord, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.ScoreRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read scores: %v", domain.ErrStorage, err)
	}
	var records []domain.ScoreRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: decode scores: %v", domain.ErrStorage, err)
	}
	return records, nil
}
