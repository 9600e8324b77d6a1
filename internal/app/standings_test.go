package app_test

import (
	"testing"

	"finlit-quiz-service/internal/app"
	"finlit-quiz-service/internal/domain"
)

func TestStandingsTieBreakByUsername(t *testing.T) {
	records := []domain.ScoreRecord{
		{Username: "Bob", Country: "Grenada", Category: "Warm-up (10)", Score: 8, Total: 10},
		{Username: "Ann", Country: "Dominica", Category: "Warm-up (10)", Score: 8, Total: 10},
	}
	app.SortStandings(records)
	if records[0].Username != "Ann" || records[1].Username != "Bob" {
		t.Fatalf("expected Ann before Bob on identical scores, got %v", records)
	}
}

func TestStandingsOrderAccuracyFirst(t *testing.T) {
	records := []domain.ScoreRecord{
		{Username: "lowAccuracy", Score: 9, Total: 20},   // 45%
		{Username: "highAccuracy", Score: 5, Total: 5},   // 100%
		{Username: "midAccuracy", Score: 8, Total: 10},   // 80%
		{Username: "alsoPerfect", Score: 10, Total: 10},  // 100%, higher score
		{Username: "longerAttempt", Score: 16, Total: 20}, // 80%, higher score
	}
	app.SortStandings(records)

	want := []string{"alsoPerfect", "highAccuracy", "longerAttempt", "midAccuracy", "lowAccuracy"}
	for i, name := range want {
		if records[i].Username != name {
			t.Fatalf("position %d: expected %s, got %s (%v)", i, name, records[i].Username, records)
		}
	}
}

func TestRankMatchesExactAttempt(t *testing.T) {
	records := []domain.ScoreRecord{
		{Username: "Ann", Country: "Dominica", Category: "Warm-up (10)", Score: 10, Total: 10},
		{Username: "Bob", Country: "Grenada", Category: "Warm-up (10)", Score: 8, Total: 10},
		{Username: "Bob", Country: "Grenada", Category: "Warm-up (10)", Score: 6, Total: 10},
	}
	app.SortStandings(records)

	attempt := domain.ScoreRecord{Username: "Bob", Country: "Grenada", Category: "Warm-up (10)", Score: 6, Total: 10}
	if got := app.Rank(records, attempt); got != 3 {
		t.Fatalf("expected rank 3, got %d", got)
	}

	missing := domain.ScoreRecord{Username: "Zoe", Category: "Warm-up (10)", Score: 1, Total: 10}
	if got := app.Rank(records, missing); got != 0 {
		t.Fatalf("expected rank 0 for missing attempt, got %d", got)
	}
}

func TestFilterCategory(t *testing.T) {
	records := []domain.ScoreRecord{
		{Username: "Ann", Category: "Warm-up (10)"},
		{Username: "Bob", Category: "Easy Peasy (5)"},
		{Username: "Cam", Category: "Warm-up (10)"},
	}
	got := app.FilterCategory(records, "Warm-up (10)")
	if len(got) != 2 || got[0].Username != "Ann" || got[1].Username != "Cam" {
		t.Fatalf("unexpected filter result: %v", got)
	}
}
