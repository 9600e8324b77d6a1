package app

import (
	"sort"

	"finlit-quiz-service/internal/domain"
)

// FilterCategory keeps only the records sharing a difficulty label.
func FilterCategory(records []domain.ScoreRecord, category string) []domain.ScoreRecord {
	out := make([]domain.ScoreRecord, 0, len(records))
	for _, r := range records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// SortStandings orders records for leaderboard placement: accuracy ratio
// descending, then absolute score, then total attempted, with the
// lexicographically smaller username as the final deterministic tie-break.
func SortStandings(records []domain.ScoreRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Accuracy() != b.Accuracy() {
			return a.Accuracy() > b.Accuracy()
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Username < b.Username
	})
}

// Rank returns the 1-based position of the first record matching the given
// attempt, or zero when it is absent from the standings.
func Rank(sorted []domain.ScoreRecord, attempt domain.ScoreRecord) int {
	for i, r := range sorted {
		if r.SameAttempt(attempt) {
			return i + 1
		}
	}
	return 0
}
